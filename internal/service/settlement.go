package service

import (
	"fmt"
	"math"
)

// Settlement — результат расчёта распределения средств при capture.
// Инвариант: PlatformFee + ReviewerPayout = Budget без остатка.
type Settlement struct {
	Budget         int64   `json:"budget"`
	FeeRate        float64 `json:"fee_rate"`
	PlatformFee    int64   `json:"platform_fee"`
	ReviewerPayout int64   `json:"reviewer_payout"`
}

// ComputeSettlement вычисляет комиссию платформы и выплату ревьюеру.
// Чистая функция от (budget, feeRate): ставка передаётся явно и читается
// вызывающей стороной в момент capture, а не в момент создания заявки.
// Округление применяется к комиссии, остаток уходит в выплату.
func ComputeSettlement(budget int64, feeRate float64) (Settlement, error) {
	if budget <= 0 {
		return Settlement{}, fmt.Errorf("settlement: бюджет должен быть положительным, получено %d", budget)
	}
	if feeRate < 0 || feeRate > 1 {
		return Settlement{}, fmt.Errorf("settlement: ставка комиссии должна быть в [0, 1], получено %g", feeRate)
	}

	fee := int64(math.Round(float64(budget) * feeRate))

	return Settlement{
		Budget:         budget,
		FeeRate:        feeRate,
		PlatformFee:    fee,
		ReviewerPayout: budget - fee,
	}, nil
}
