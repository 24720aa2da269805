package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type handlerSeed struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Pool     string `yaml:"pool"`
	Capacity int    `yaml:"capacity"`
	Inactive bool   `yaml:"inactive"`
}

// LoadHandlerSeed reads the handler roster used to populate the in-memory
// store. An empty path yields no handlers.
//
//	handlers:
//	  - {id: agent-1, name: Ana, kind: AGENT, pool: agents}
//	  - {id: bo-1, name: Cleo, kind: BACK_OFFICE, pool: backoffice, capacity: 20}
func LoadHandlerSeed(path string) ([]domain.Handler, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read handler seed: %w", err)
	}
	var doc struct {
		Handlers []handlerSeed `yaml:"handlers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse handler seed: %w", err)
	}

	out := make([]domain.Handler, 0, len(doc.Handlers))
	seen := make(map[string]struct{}, len(doc.Handlers))
	for i, h := range doc.Handlers {
		if h.ID == "" || h.Pool == "" {
			return nil, fmt.Errorf("handler seed entry %d: id and pool are required", i)
		}
		if _, dup := seen[h.ID]; dup {
			return nil, fmt.Errorf("handler seed entry %d: duplicate id %q", i, h.ID)
		}
		seen[h.ID] = struct{}{}
		kind := domain.HandlerKind(h.Kind)
		switch kind {
		case domain.HandlerKindAgent, domain.HandlerKindBackOffice, domain.HandlerKindExternalArea:
		default:
			return nil, fmt.Errorf("handler seed entry %d: unknown kind %q", i, h.Kind)
		}
		out = append(out, domain.Handler{
			ID:       h.ID,
			Name:     h.Name,
			Kind:     kind,
			PoolID:   h.Pool,
			Capacity: h.Capacity,
			Active:   !h.Inactive,
		})
	}
	return out, nil
}
