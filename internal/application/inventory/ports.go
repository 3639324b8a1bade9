package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios
// atados a esa tx. Garantiza el todo-o-nada de Consume, CreateLot y el barrido
// de vencidos: o confirman todos los sub-pasos (débitos + movimientos) o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// Clock es la fuente de tiempo inyectada: el núcleo nunca lee el reloj de pared
// directamente, así vencimientos y reorden son deterministas bajo test.
type Clock interface {
	Now() time.Time
}

// SystemClock implementa Clock con time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
