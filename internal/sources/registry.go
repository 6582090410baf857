package sources

import (
	"fmt"
	"log/slog"

	"filmloc/internal/config"
)

// FromConfig builds the Source implementations declared in cfg. Entries
// without a kind are the built-in named feeds and are registered elsewhere.
func FromConfig(cfg *config.Config, logger *slog.Logger) ([]Source, error) {
	if cfg == nil {
		return nil, nil
	}
	var out []Source
	for _, src := range cfg.EnabledSources() {
		switch src.Kind {
		case "":
		case config.SourceKindFile:
			out = append(out, NewFileSource(src.Name, src.Path, logger))
		default:
			return nil, fmt.Errorf("source %q: unsupported kind %q", src.Name, src.Kind)
		}
	}
	return out, nil
}
