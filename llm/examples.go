package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadExamplesFromFile loads few-shot examples. Supported formats are JSON
// Lines (.jsonl, one {"input","output"} object per line) and YAML (.yaml or
// .yml, a list of input/output mappings). Every example is validated.
func ReadExamplesFromFile(filename string) ([]Example, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open examples file: %w", err)
	}
	defer file.Close()

	var examples []Example
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jsonl":
		scanner := bufio.NewScanner(file)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			var ex Example
			if err := json.Unmarshal([]byte(text), &ex); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", filename, line, err)
			}
			examples = append(examples, ex)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading examples file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(&examples); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported examples format %q (use .jsonl or .yaml)", filepath.Ext(filename))
	}

	if len(examples) == 0 {
		return nil, fmt.Errorf("%s holds no examples", filename)
	}
	for i, ex := range examples {
		if err := validate.Struct(ex); err != nil {
			return nil, fmt.Errorf("example %d: %w", i+1, err)
		}
	}
	return examples, nil
}
