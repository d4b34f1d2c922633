// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node

import (
	"context"
	"math/big"

	"github.com/vechain/stakeshare/builtin/market"
	"github.com/vechain/stakeshare/cgfy"
)

// UploadModel lists a model and returns its id.
func (n *Node) UploadModel(ctx context.Context, creator cgfy.Address, name, url string, price *big.Int) (uint64, *Receipt, error) {
	var id uint64
	receipt, err := n.write(ctx, "uploadModel", func(uint64) (err error) {
		id, err = n.contracts.Market.UploadModel(creator, name, url, price)
		return
	})
	if err != nil {
		return 0, nil, err
	}
	return id, receipt, nil
}

// BuyModel pays value for model id on behalf of buyer.
func (n *Node) BuyModel(ctx context.Context, buyer cgfy.Address, id uint64, value *big.Int) (*Receipt, error) {
	return n.write(ctx, "buyModel", func(uint64) error {
		_, err := n.contracts.Market.BuyModel(buyer, id, value)
		return err
	})
}

// Model returns the model with id.
func (n *Node) Model(id uint64) (*market.Model, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.contracts.Market.GetModel(id)
}

// Models returns up to limit models starting from id offset+1.
func (n *Node) Models(offset, limit uint64) ([]*market.Model, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	count, err := n.contracts.Market.ModelCount()
	if err != nil {
		return nil, err
	}
	models := make([]*market.Model, 0)
	for id := offset + 1; id <= count && uint64(len(models)) < limit; id++ {
		m, err := n.contracts.Market.GetModel(id)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}
