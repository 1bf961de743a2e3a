package runtime

import (
	"testing"
)

// TestConfigPath tests the ConfigPath variable
// TestConfigPath 测试 ConfigPath 变量
func TestConfigPath(t *testing.T) {
	original := ConfigPath
	defer func() {
		ConfigPath = original
	}()

	ConfigPath = "/etc/netxconf/config.yaml"
	if ConfigPath != "/etc/netxconf/config.yaml" {
		t.Errorf("ConfigPath should be set, got %s", ConfigPath)
	}
}

// TestStoreBackend tests the StoreBackend override
// TestStoreBackend 测试 StoreBackend 覆盖值
func TestStoreBackend(t *testing.T) {
	original := StoreBackend
	defer func() {
		StoreBackend = original
	}()

	if StoreBackend != "" {
		t.Logf("StoreBackend is: %s", StoreBackend)
	}

	StoreBackend = "memory"
	if StoreBackend != "memory" {
		t.Errorf("StoreBackend should be 'memory', got %s", StoreBackend)
	}
}
