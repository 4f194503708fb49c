package repository

import (
	"fmt"
	"math/big"

	"stackpot/domain/entities"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5/pgtype"
)

var bigTen = big.NewInt(10)

// toNumeric converts an amount into a NUMERIC(78,0) parameter
func toNumeric(a entities.Amount) pgtype.Numeric {
	return pgtype.Numeric{Int: a.ToBig(), Exp: 0, Valid: true}
}

// optionalNumeric converts a nullable amount
func optionalNumeric(a *entities.Amount) pgtype.Numeric {
	if a == nil {
		return pgtype.Numeric{}
	}
	return toNumeric(*a)
}

// fromNumeric converts a scanned NUMERIC back into an amount. Fractional or
// negative values are rejected since amounts are whole micro-STX.
func fromNumeric(n pgtype.Numeric) (entities.Amount, error) {
	if !n.Valid {
		return entities.Amount{}, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return entities.Amount{}, fmt.Errorf("amount is not a finite number")
	}

	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		v.Mul(v, new(big.Int).Exp(bigTen, big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		div := new(big.Int).Exp(bigTen, big.NewInt(int64(-n.Exp)), nil)
		var rem big.Int
		v.QuoRem(v, div, &rem)
		if rem.Sign() != 0 {
			return entities.Amount{}, fmt.Errorf("amount %s has a fractional part", n.Int.String())
		}
	}
	if v.Sign() < 0 {
		return entities.Amount{}, fmt.Errorf("amount %s is negative", v.String())
	}

	a, overflow := uint256.FromBig(v)
	if overflow {
		return entities.Amount{}, entities.ErrAmountOverflow
	}
	return *a, nil
}

// nullableAmount converts a scanned nullable NUMERIC
func nullableAmount(n pgtype.Numeric) (*entities.Amount, error) {
	if !n.Valid {
		return nil, nil
	}
	a, err := fromNumeric(n)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
