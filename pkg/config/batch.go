package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// TransferSpec is one entry of a batch input file. Amounts are decimal
// strings in the token's smallest unit.
type TransferSpec struct {
	SourceChain      string `json:"source_chain"`
	DestinationChain string `json:"destination_chain"`
	Asset            string `json:"asset"`
	Amount           string `json:"amount"`
	Fee              string `json:"fee"`
	Receiver         string `json:"receiver,omitempty"`
}

// LoadBatchFile reads an ordered list of transfer specifications from a JSON file
func LoadBatchFile(path string) ([]TransferSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %v", err)
	}

	var specs []TransferSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to decode batch file %s: %v", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("batch file %s contains no transfers", path)
	}

	for i, spec := range specs {
		if spec.SourceChain == "" || spec.DestinationChain == "" {
			return nil, fmt.Errorf("batch entry %d: source_chain and destination_chain are required", i)
		}
		if spec.Asset == "" {
			return nil, fmt.Errorf("batch entry %d: asset is required", i)
		}
		if spec.Amount == "" {
			return nil, fmt.Errorf("batch entry %d: amount is required", i)
		}
	}
	return specs, nil
}
