package services

import (
	"math/big"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/utils"
)

// QuoteFees derives the fee terms for a submission. The live suggestion wins
// when it is above the floor; the floor is never undercut. floors.Model picks
// the pricing model. Floors are validated positive at startup.
func QuoteFees(suggested *models.FeeQuote, floors models.FeeFloors) models.FeeQuote {
	if floors.Model == models.FeeModelLegacy {
		price := floors.GasPrice
		if suggested != nil && utils.IsPositive(suggested.GasPrice) {
			price = utils.MaxBig(suggested.GasPrice, floors.GasPrice)
		}
		return models.FeeQuote{
			Model:    models.FeeModelLegacy,
			GasPrice: new(big.Int).Set(price),
		}
	}

	tip, feeCap := floors.TipCap, floors.FeeCap
	if suggested != nil {
		tip = utils.MaxBig(suggested.TipCap, floors.TipCap)
		feeCap = utils.MaxBig(suggested.FeeCap, floors.FeeCap)
	}
	// a cap below the tip is rejected by the node
	feeCap = utils.MaxBig(feeCap, tip)

	return models.FeeQuote{
		Model:  models.FeeModelEIP1559,
		TipCap: new(big.Int).Set(tip),
		FeeCap: new(big.Int).Set(feeCap),
	}
}
