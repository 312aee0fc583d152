// Package config holds the locally persisted settings shared by the
// TUI and the CLI. Settings live in the encrypted vault as JSON
// envelopes so heterogeneous types can share one collection.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zacct/internal/api"
)

// Envelope wraps a JSON-encoded settings value.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// serverKey is the envelope key for the server settings.
const serverKey = "server"

// Server holds the directory server location and API token.
type Server struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// Configured reports whether a server has been set up.
func (s Server) Configured() bool {
	return s.BaseURL != ""
}

// APIConfig converts the settings to an api.Config.
func (s Server) APIConfig() api.Config {
	return api.Config{
		BaseURL: s.BaseURL,
		Token:   s.Token,
	}
}

// LoadServer reads the server settings from the vault. A missing entry
// is not an error; it returns the zero value (unconfigured).
func LoadServer(col *zstore.Collection[Envelope]) Server {
	return load[Server](col, serverKey)
}

// SaveServer persists the server settings into the vault.
func SaveServer(col *zstore.Collection[Envelope], s Server) error {
	return save(col, serverKey, s)
}

func load[T any](col *zstore.Collection[Envelope], key string) T {
	var zero T
	if col == nil {
		return zero
	}

	env, err := col.Get(key)
	if err != nil {
		return zero
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero
	}

	return v
}

func save[T any](col *zstore.Collection[Envelope], key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return col.Put(key, Envelope{Data: data})
}
