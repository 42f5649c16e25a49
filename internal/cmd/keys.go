package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Alia5/capsule/input"
)

// Keys lists the key names accepted in policy files.
type Keys struct {
	Filter string `arg:"" optional:"" help:"Only list names containing this text"`
}

func (k *Keys) Run() error {
	return k.write(os.Stdout)
}

func (k *Keys) write(w io.Writer) error {
	filter := strings.ToUpper(k.Filter)
	for _, code := range input.KnownKeys() {
		name := input.KeyName(code)
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-24s %d\n", name, code); err != nil {
			return err
		}
	}
	return nil
}
