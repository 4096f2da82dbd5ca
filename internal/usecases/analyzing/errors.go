package analyzing

import "github.com/pkg/errors"

var (
	// ErrInvalidParameter indica parâmetros fora de domínio, rejeitados
	// antes de qualquer cálculo ou persistência.
	ErrInvalidParameter = errors.New("parâmetro inválido")
)
