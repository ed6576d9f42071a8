package webhooks

import (
	"embed"
	"strings"
	"time"
)

//go:embed VERSION
var F embed.FS

const (
	// DefaultClientTimeout bounds calls back into the Sapio platform. Long
	// running webhooks hold their platform session open for the duration of
	// the invocation, so this is deliberately generous.
	DefaultClientTimeout = 1800 * time.Second

	// DefaultPort must match the port the deployment exposes.
	DefaultPort uint32 = 8080
)

func readVersion(fs embed.FS) ([]byte, error) {
	data, err := fs.ReadFile("VERSION")
	if err != nil {
		return nil, err
	}

	return data, nil
}

func GetVersion() string {
	v := "0.1.0"

	f, err := readVersion(F)
	if err != nil {
		return v
	}

	v = strings.TrimSuffix(string(f), "\n")
	return v
}
