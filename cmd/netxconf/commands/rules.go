package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/ruleset"
	"github.com/livp123/netxconf/internal/utils/fileutil"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

// newLister is replaced in tests.
var newLister = ruleset.NewLister

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the stored rule document",
	// Short: 管理存储的规则文档
	Long: `Manage the iptables-save rule document (show/export/import/diff/query/add/delete/snapshot)`,
}

// readInput reads a file argument, or stdin for "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	return string(data), err
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show tables and numbered rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		doc, err := svc.GetRules(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), doc)
		}
		table, _ := cmd.Flags().GetString("table")
		common.ShowDocument(cmd.OutOrStdout(), doc, table)
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the document in canonical iptables-save form",
	Long: `Print the rule document re-encoded in canonical iptables-save form.
The output is accepted by iptables-restore. Tokens netxconf does not model are not included.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		doc, err := svc.GetRules(cmd.Context())
		if err != nil {
			return err
		}
		text := iptables.EncodeDocument(doc)

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		}
		if err := fileutil.AtomicWriteFile(output, []byte(text), 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tables to %s\n", doc.Len(), output)
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Parse iptables-save output and store it",
	Long: `Parse iptables-save output from a file (or stdin with "-") and replace the stored document.
With --strict a table given twice is an error; otherwise the last block wins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		var doc *iptables.Document
		if strict, _ := cmd.Flags().GetBool("strict"); strict {
			doc, err = iptables.ParseDocumentStrict(text)
		} else {
			doc, err = iptables.ParseDocument(text)
		}
		if err != nil {
			return err
		}
		for _, name := range doc.DuplicateTables {
			cmd.PrintErrf("Warning: table %q appears more than once; the last block was kept\n", name)
		}

		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		if err := svc.SetRules(cmd.Context(), doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tables, %d rules\n", doc.Len(), doc.RuleCount())
		return nil
	},
}

var rulesDiffCmd = &cobra.Command{
	Use:   "diff <file|->",
	Short: "Compare iptables-save output with the stored document",
	Long: `Show a unified diff between the stored document and the given iptables-save
output, both in canonical form. Exits non-zero when they differ.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		incoming, err := iptables.ParseDocument(text)
		if err != nil {
			return err
		}

		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		stored := iptables.NewDocument()
		if doc, err := svc.GetRules(cmd.Context()); err == nil {
			stored = doc
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}

		a, b := iptables.EncodeDocument(stored), iptables.EncodeDocument(incoming)
		if a == b {
			fmt.Fprintln(cmd.OutOrStdout(), "No differences.")
			return nil
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(a),
			B:        difflib.SplitLines(b),
			FromFile: svc.Key(),
			ToFile:   args[0],
			Context:  3,
		})
		if err != nil {
			return err
		}
		_, _ = io.WriteString(cmd.OutOrStdout(), diff)
		return fmt.Errorf("rules differ from %s", svc.Key())
	},
}

var rulesQueryCmd = &cobra.Command{
	Use:   "query <expr>",
	Short: "List rules matching an expression",
	Long: `List rules matching a boolean expression over rule fields.
Every field name is a variable (nil when absent), as are chain, table and index.

Examples:
  netxconf rules query 'protocol == "tcp" && destinationPort in ["22", "443"]'
  netxconf rules query 'table == "nat" && jump == "DNAT"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		doc, err := svc.GetRules(cmd.Context())
		if err != nil {
			return err
		}
		matches, err := ruleset.Select(doc, args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if matches == nil {
				matches = []ruleset.Match{}
			}
			return common.PrintJSON(cmd.OutOrStdout(), matches)
		}
		common.ShowMatches(cmd.OutOrStdout(), matches)
		return nil
	},
}

// parseFieldArgs turns field=value arguments into rule values.
func parseFieldArgs(args []string) (map[iptables.Field]string, error) {
	values := make(map[iptables.Field]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		f, ok := iptables.FieldByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		values[f] = value
	}
	return values, nil
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <table> <chain> <field=value>...",
	Short: "Add a rule to a table",
	Long: `Add a rule to a table, creating the table if needed.

Examples:
  netxconf rules add filter INPUT protocol=tcp destinationPort=22 jump=ACCEPT
  netxconf rules add filter INPUT --position 0 source=10.0.0.0/8 jump=DROP`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName, chain := args[0], args[1]
		values, err := parseFieldArgs(args[2:])
		if err != nil {
			return err
		}
		if _, ok := values[iptables.FieldDestination]; ok {
			cmd.PrintErrln("Warning: destination is not written to iptables-save output; use destinationIp or a match module")
		}
		rule := iptables.NewRule(chain, values)
		if err := ruleset.ValidateRule(rule); err != nil {
			return err
		}
		position, _ := cmd.Flags().GetInt("position")

		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		add := func(doc *iptables.Document) error {
			t, ok := doc.Table(tableName)
			if !ok {
				t = &iptables.Table{}
				doc.Set(tableName, t)
			}
			if position < 0 {
				t.AppendRule(rule)
				return nil
			}
			return t.InsertRule(position, rule)
		}
		err = svc.Update(cmd.Context(), add)
		if errors.Is(err, errors.ErrNotFound) {
			// First rule: start a new document
			// 第一条规则：创建新文档
			doc := iptables.NewDocument()
			if err = add(doc); err == nil {
				err = svc.SetRules(cmd.Context(), doc)
			}
		}
		if err != nil {
			return err
		}
		logger.Get(cmd.Context()).Infof("[RULES] Added rule to %s: %s", tableName, iptables.EncodeRule(rule))
		fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", iptables.EncodeRule(rule))
		return nil
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <table> <index>",
	Short: "Delete a rule by its index in rules show",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName := args[0]
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[1], err)
		}

		svc, err := common.GetRules()
		if err != nil {
			return err
		}
		var removed iptables.Rule
		err = svc.Update(cmd.Context(), func(doc *iptables.Document) error {
			t, ok := doc.Table(tableName)
			if !ok {
				return fmt.Errorf("table %q not found", tableName)
			}
			if index >= 0 && index < len(t.Rules) {
				removed = t.Rules[index]
			}
			return t.DeleteRule(index)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", iptables.EncodeRule(removed))
		return nil
	},
}

var rulesSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Read the running ruleset of this host",
	Long: `Read the ruleset currently loaded in the kernel through iptables and print it
in canonical iptables-save form. With --save it replaces the stored document.
Nothing is ever written to the kernel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ipv6, _ := cmd.Flags().GetBool("ipv6")
		tables, _ := cmd.Flags().GetStringSlice("tables")

		l, err := newLister(ipv6)
		if err != nil {
			return fmt.Errorf("failed to open iptables: %w", err)
		}
		doc, err := ruleset.Snapshot(cmd.Context(), l, tables)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			svc, err := common.GetRules()
			if err != nil {
				return err
			}
			if err := svc.SetRules(cmd.Context(), doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot: %d tables, %d rules\n", doc.Len(), doc.RuleCount())
			return nil
		}
		_, err = io.WriteString(cmd.OutOrStdout(), iptables.EncodeDocument(doc))
		return err
	},
}

func init() {
	rulesShowCmd.Flags().StringP("table", "t", "", "Only show this table")
	rulesShowCmd.Flags().Bool("json", false, "Print the document as JSON")
	rulesExportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	rulesImportCmd.Flags().Bool("strict", false, "Reject documents that repeat a table")
	rulesQueryCmd.Flags().Bool("json", false, "Print matches as JSON")
	rulesAddCmd.Flags().IntP("position", "p", -1, "Insert at this index instead of appending")
	rulesSnapshotCmd.Flags().Bool("ipv6", false, "Read ip6tables instead of iptables")
	rulesSnapshotCmd.Flags().StringSlice("tables", nil, "Tables to read (default filter,nat,mangle)")
	rulesSnapshotCmd.Flags().Bool("save", false, "Store the snapshot as the rule document")

	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesDiffCmd)
	rulesCmd.AddCommand(rulesQueryCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)
	rulesCmd.AddCommand(rulesSnapshotCmd)
}
