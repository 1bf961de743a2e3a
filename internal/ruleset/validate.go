package ruleset

import (
	"fmt"

	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/utils/iputil"
	"github.com/livp123/netxconf/pkg/errors"
)

// ValidateRule checks a rule built from user input before it is stored: every
// value must encode into a form that parses back, and the address and port
// fields must hold addresses and ports. Fields that are not set are not
// checked.
// ValidateRule 校验由用户输入构造的规则：可往返编码，且地址与端口字段合法。
func ValidateRule(r iptables.Rule) error {
	if err := iptables.ValidateRule(r); err != nil {
		return err
	}
	for _, f := range []iptables.Field{iptables.FieldSource, iptables.FieldDestination} {
		if v, ok := r.Get(f).Get(); ok {
			if _, err := iputil.ParseAddress(v); err != nil {
				return errors.NewFormatError(fmt.Sprintf("%s: %v", f, err))
			}
		}
	}
	for _, f := range []iptables.Field{iptables.FieldSourcePort, iptables.FieldDestinationPort} {
		if v, ok := r.Get(f).Get(); ok {
			if err := iputil.ValidPort(v); err != nil {
				return errors.NewFormatError(fmt.Sprintf("%s: %v", f, err))
			}
		}
	}
	if v, ok := r.Get(iptables.FieldDestinationIP).Get(); ok {
		if err := iputil.ValidNATTarget(v); err != nil {
			return errors.NewFormatError(fmt.Sprintf("%s: %v", iptables.FieldDestinationIP, err))
		}
	}
	return nil
}
