package seeder

import (
	"context"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"

	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

// Ranges for generated values.
const (
	minAge     = 18
	maxAge     = 90
	maxBalance = 50_000
	decimals   = 2
)

// Generate builds n fake clientes. The same non-zero seed yields the same
// clientes.
func Generate(ctx context.Context, n int, seed int64) []*record.Record {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := faker.NewWithSeed(rand.NewSource(seed))

	out := make([]*record.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record.FromPairs(
			record.Field{Name: "nome", Value: record.String(f.Person().Name())},
			record.Field{Name: "email", Value: record.String(f.Internet().Email())},
			record.Field{Name: "telefone", Value: record.String(f.Phone().Number())},
			record.Field{Name: "cidade", Value: record.String(f.Address().City())},
			record.Field{Name: "idade", Value: record.NumberFromInt(int64(f.IntBetween(minAge, maxAge)))},
			record.Field{Name: "saldo", Value: record.NumberFromFloat(f.Float64(decimals, 0, maxBalance))},
			record.Field{Name: "ativo", Value: record.Bool(f.Bool())},
		))
	}

	logger.Get().Debug(ctx, "generated clientes", logger.Int("count", n), logger.Any("seed", seed))
	return out
}
