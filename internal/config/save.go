package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveOperations updates the operations section in the config file.
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree instead of re-marshaling the whole config.
func SaveOperations(configPath string, oc OperationsConfig) error {
	node, err := buildMappingNode(map[string]any{
		"max_auto_retries": oc.MaxAutoRetries,
		"event_buffer":     oc.EventBuffer,
	})
	if err != nil {
		return fmt.Errorf("building operations node: %w", err)
	}
	return saveSection(configPath, "operations", node)
}

// SaveTracing updates the tracing section in the config file.
func SaveTracing(configPath string, tc TracingConfig) error {
	node, err := buildMappingNode(map[string]any{
		"enabled":       tc.Enabled,
		"exporter":      tc.Exporter,
		"file_path":     tc.FilePath,
		"otlp_endpoint": tc.OTLPEndpoint,
		"sample_rate":   tc.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("building tracing node: %w", err)
	}
	return saveSection(configPath, "tracing", node)
}

// buildMappingNode converts a plain map into a yaml.Node mapping.
func buildMappingNode(values map[string]any) (*yaml.Node, error) {
	data, err := yaml.Marshal(values)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("unexpected node shape")
	}
	return doc.Content[0], nil
}

// saveSection replaces (or appends) one top-level section of the config file
// and writes the result atomically.
func saveSection(configPath, section string, sectionNode *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		// Empty or new file
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: section},
						sectionNode,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			found := false
			for i := 0; i < len(root.Content)-1; i += 2 {
				if root.Content[i].Value == section {
					root.Content[i+1] = sectionNode
					found = true
					break
				}
			}
			if !found {
				root.Content = append(root.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: section},
					sectionNode,
				)
			}
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	// Write atomically (write to temp, then rename)
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".pkgops.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
