package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric gathered by reg to path in the text
// exposition format understood by the node exporter textfile collector.
func WriteTextfile(path string, reg *prom.Registry) error {
	if reg == nil {
		return fmt.Errorf("write metrics %s: nil registry", path)
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
