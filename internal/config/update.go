package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/sensor"
	"gopkg.in/yaml.v3"
)

// fileHeader is written above a freshly generated config.
const fileHeader = `# watchdog configuration
# Docs: https://github.com/rileyhilliard/watchdog#configuration
#
# Any scalar setting can be overridden with WATCHDOG_<KEY>, e.g. WATCHDOG_API_KEY.

`

// scalarKeys are the top-level keys 'watchdog config set' may change.
var scalarKeys = map[string]bool{
	"version":           true,
	"port":              true,
	"baud_rate":         true,
	"api_key":           true,
	"cooldown_seconds":  true,
	"buffer_capacity":   true,
	"poll_interval":     true,
	"reconnect_backoff": true,
	"retry_backoff":     true,
	"replay":            true,
	"metrics_listen":    true,
}

// stringKeys are always written as strings, even when the value looks like a number.
var stringKeys = map[string]bool{
	"port":           true,
	"api_key":        true,
	"replay":         true,
	"metrics_listen": true,
}

var captureFields = map[string]bool{
	"dir":         true,
	"keep_runs":   true,
	"keep_days":   true,
	"max_size_mb": true,
}

var thresholdFields = map[string]bool{
	"high":      true,
	"low":       true,
	"inclusive": true,
	"title":     true,
}

// Save writes cfg to path as YAML with a short header comment.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is unexpected - please report it.")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to create config directory "+dir,
				"Check directory permissions")
		}
	}

	// The file may hold an API key.
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path,
			"Check file permissions")
	}
	return nil
}

// checkKey reports whether key is a dotted path 'config set' understands and
// whether its value must be a string.
func checkKey(key string) (forceString bool, err error) {
	parts := strings.Split(key, ".")
	switch {
	case len(parts) == 1 && scalarKeys[parts[0]]:
		return stringKeys[parts[0]], nil
	case len(parts) == 2 && parts[0] == "parser" && parts[1] == "gas_zero_floor":
		return false, nil
	case len(parts) == 2 && parts[0] == "capture" && captureFields[parts[1]]:
		return parts[1] == "dir", nil
	case len(parts) == 3 && parts[0] == "thresholds" && thresholdFields[parts[2]]:
		if _, err := sensor.ParseMetric(parts[1]); err != nil {
			return false, err
		}
		return parts[2] == "title", nil
	}
	return false, fmt.Errorf("unknown or non-scalar key '%s'", key)
}

// Set changes one scalar setting in the config file at path, keeping the rest
// of the file (including comments) intact. Missing parent mappings are
// created. If the result doesn't validate, the file is restored and the
// validation error is returned.
func Set(path, key, value string) error {
	forceString, err := checkKey(key)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't set '%s'", key),
			"Settable keys: port, baud_rate, api_key, cooldown_seconds, buffer_capacity, poll_interval, reconnect_backoff, retry_backoff, replay, metrics_listen, parser.gas_zero_floor, capture.{dir,keep_runs,keep_days,max_size_mb}, thresholds.<metric>.{high,low,inclusive,title}")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Run 'watchdog init' to create one")
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(original, &root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file",
			"Check the YAML syntax in "+path)
	}

	if root.Kind == 0 {
		// Empty file: start a fresh document.
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Expected a mapping at the top of "+path,
			"The config file should be key: value pairs")
	}

	node := root.Content[0]
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child := findMapValue(node, p)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalarNode(p, false), child)
		} else if child.Kind != yaml.MappingNode {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' in %s is not a mapping", p, path),
				"Fix the file by hand or recreate it with 'watchdog init --force'")
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Content = nil
		existing.Value = value
		existing.Style = 0
		existing.Tag = ""
		if forceString {
			existing.Tag = "!!str"
		}
	} else {
		node.Content = append(node.Content, scalarNode(leaf, false), scalarNode(value, forceString))
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is unexpected - please report it.")
	}
	if err := encoder.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is unexpected - please report it.")
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot access "+path, "Check file permissions")
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to write "+path, "Check file permissions")
	}

	cfg, loadErr := Load(path)
	if loadErr == nil {
		loadErr = Validate(cfg)
	}
	if loadErr != nil {
		if err := os.WriteFile(path, original, info.Mode().Perm()); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to restore "+path+" after an invalid change",
				"Check the file by hand")
		}
		return loadErr
	}
	return nil
}

func scalarNode(value string, forceString bool) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	if forceString {
		n.Tag = "!!str"
	}
	return n
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
