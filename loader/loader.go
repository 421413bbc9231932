// Package loader produces instruction traces, either by generating a
// synthetic program or by reading one from a JSON file.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/bpsim/insts"
)

// Load reads a JSON trace file. The file holds an array of instruction
// records such as {"pc": 256, "type": "branch", "target": 264, "taken": true}.
func Load(path string) ([]insts.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	var prog []insts.Instruction
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}

	if err := insts.ValidateProgram(prog); err != nil {
		return nil, err
	}

	return prog, nil
}

// Save writes prog to a JSON trace file.
func Save(path string, prog []insts.Instruction) error {
	if err := insts.ValidateProgram(prog); err != nil {
		return err
	}

	data, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize trace: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}

	return nil
}
