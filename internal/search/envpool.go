package search

import (
	"sync"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// EnvPool rents and returns ExecutionEnvironment clones for worker
// goroutines, backed by sync.Pool. No Go third-party worker-pool library
// appears anywhere in the example pack, so sync.Pool — the standard
// library's own answer to this exact problem — is used directly rather
// than introducing an unneeded dependency.
type EnvPool struct {
	pool sync.Pool
}

// NewEnvPool returns a pool that vends clones of template.
func NewEnvPool(template models.ExecutionEnvironment) *EnvPool {
	return &EnvPool{
		pool: sync.Pool{
			New: func() any {
				clone := template.Clone()
				return &clone
			},
		},
	}
}

// Rent returns an environment ready for one candidate evaluation.
func (p *EnvPool) Rent() *models.ExecutionEnvironment {
	return p.pool.Get().(*models.ExecutionEnvironment)
}

// Return releases env back to the pool.
func (p *EnvPool) Return(env *models.ExecutionEnvironment) {
	p.pool.Put(env)
}
