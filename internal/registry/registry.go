package registry

import (
	"github.com/pkg/errors"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Registry is the set of currency codes the system tracks. Only registered
// currencies may be aggregated or cached; quotes for anything else are
// dropped on the floor.
type Registry struct {
	codes map[entities.CurrencyCode]struct{}
	order []entities.CurrencyCode
}

func New(codes []string) (*Registry, error) {
	const op = "registry.New"

	r := &Registry{codes: make(map[entities.CurrencyCode]struct{}, len(codes))}

	for _, raw := range codes {
		code, err := entities.ParseCurrencyCode(raw)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}

		if _, ok := r.codes[code]; ok {
			continue
		}

		r.codes[code] = struct{}{}
		r.order = append(r.order, code)
	}

	return r, nil
}

func (r *Registry) Contains(code entities.CurrencyCode) bool {
	_, ok := r.codes[code]
	return ok
}

// Codes returns the registered codes in registration order.
func (r *Registry) Codes() []entities.CurrencyCode {
	out := make([]entities.CurrencyCode, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
