// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package market

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/builtin/solidity"
	"github.com/vechain/stakeshare/builtin/staker/reverts"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/state"
)

var (
	logger = log.WithContext("pkg", "market")

	ErrModelNotFound = reverts.New("model not found")
	ErrWrongPayment  = reverts.New("wrong payment")
	ErrInvalidPrice  = reverts.New("invalid price")
	ErrInvalidName   = reverts.New("invalid name")

	ErrNotInitialized = errors.New("market not initialized")

	slotSettings = cgfy.BytesToBytes32([]byte("settings"))
	slotModels   = cgfy.BytesToBytes32([]byte("models"))
)

// Payments moves the currency models are paid in.
type Payments interface {
	Transfer(from, to cgfy.Address, amount *big.Int) error
}

// RevShareSink receives the revenue share cut of every sale.
type RevShareSink interface {
	Address() cgfy.Address
	NotifyRevShare(value *big.Int) error
}

// Market lists models and routes a cut of every sale to the revenue share sink.
type Market struct {
	addr     cgfy.Address
	state    *state.State
	payments Payments
	sink     RevShareSink
	recorder *events.Recorder

	settings *solidity.Value[*settings]
	models   *solidity.Mapping[modelKey, *Model]
}

func New(addr cgfy.Address, state *state.State, payments Payments, sink RevShareSink, recorder *events.Recorder) *Market {
	sctx := solidity.NewContext(addr, state)
	return &Market{
		addr:     addr,
		state:    state,
		payments: payments,
		sink:     sink,
		recorder: recorder,
		settings: solidity.NewValue[*settings](sctx, slotSettings),
		models:   solidity.NewMapping[modelKey, *Model](sctx, slotModels),
	}
}

// Initialize sets the revenue share cut in basis points. It can only be set once.
func (m *Market) Initialize(revShareBasisPoints uint64) error {
	set, err := m.settings.IsSet()
	if err != nil {
		return err
	}
	if set {
		return errors.New("market already initialized")
	}
	if revShareBasisPoints > cgfy.BasisPoints {
		return errors.Errorf("revenue share %d exceeds %d basis points", revShareBasisPoints, cgfy.BasisPoints)
	}
	return m.settings.Set(&settings{RevShareBasisPoints: revShareBasisPoints})
}

func (m *Market) getSettings() (*settings, error) {
	s, err := m.settings.Get()
	if err != nil {
		return nil, err
	}
	set, err := m.settings.IsSet()
	if err != nil {
		return nil, err
	}
	if !set {
		return nil, ErrNotInitialized
	}
	return s, nil
}

// RevShareBasisPoints returns the cut of every sale routed to stakers.
func (m *Market) RevShareBasisPoints() (uint64, error) {
	s, err := m.getSettings()
	if err != nil {
		return 0, err
	}
	return s.RevShareBasisPoints, nil
}

// ModelCount returns count of uploaded models. IDs run from 1 to the count.
func (m *Market) ModelCount() (uint64, error) {
	s, err := m.getSettings()
	if err != nil {
		return 0, err
	}
	return s.Count, nil
}

// GetModel returns the model with the id.
func (m *Market) GetModel(id uint64) (*Model, error) {
	model, err := m.models.Get(modelKey(id))
	if err != nil {
		return nil, err
	}
	if !model.Exists() {
		return nil, ErrModelNotFound
	}
	return model, nil
}

// UploadModel lists a model sold at price and returns its id.
func (m *Market) UploadModel(creator cgfy.Address, name, url string, price *big.Int) (uint64, error) {
	if name == "" {
		return 0, ErrInvalidName
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}
	if err := solidity.CheckUint256(price); err != nil {
		return 0, reverts.Wrap(ErrInvalidPrice, err)
	}

	var id uint64
	err := m.atomic(func() error {
		s, err := m.getSettings()
		if err != nil {
			return err
		}
		s.Count++
		id = s.Count
		if err := m.settings.Set(s); err != nil {
			return err
		}
		if err := m.models.Set(modelKey(id), &Model{
			ID:      id,
			Name:    name,
			URL:     url,
			Creator: creator,
			Price:   new(big.Int).Set(price),
		}); err != nil {
			return err
		}
		m.recorder.Emit(&events.Event{
			Contract:    m.addr,
			Kind:        events.ModelUploaded,
			Participant: creator,
			Amount:      new(big.Int).Set(price),
			ModelID:     id,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("model uploaded", "id", id, "creator", creator, "price", price)
	return id, nil
}

// BuyModel pays exactly the model price: the revenue share cut goes to the
// sink, the rest to the creator. It returns the revenue share cut.
func (m *Market) BuyModel(buyer cgfy.Address, id uint64, value *big.Int) (*big.Int, error) {
	var revShare *big.Int
	err := m.atomic(func() error {
		s, err := m.getSettings()
		if err != nil {
			return err
		}
		model, err := m.GetModel(id)
		if err != nil {
			return err
		}
		if value == nil || value.Cmp(model.Price) != 0 {
			return ErrWrongPayment
		}

		revShare = new(big.Int).Mul(model.Price, new(big.Int).SetUint64(s.RevShareBasisPoints))
		revShare.Quo(revShare, new(big.Int).SetUint64(cgfy.BasisPoints))
		sellerAmount := new(big.Int).Sub(model.Price, revShare)

		model.Purchases++
		if err := m.models.Set(modelKey(id), model); err != nil {
			return err
		}
		if err := m.pay(buyer, model.Creator, sellerAmount); err != nil {
			return err
		}
		if revShare.Sign() > 0 {
			if err := m.pay(buyer, m.sink.Address(), revShare); err != nil {
				return err
			}
			if err := m.sink.NotifyRevShare(revShare); err != nil {
				return err
			}
		}
		m.recorder.Emit(&events.Event{
			Contract:    m.addr,
			Kind:        events.ModelPurchased,
			Participant: buyer,
			Amount:      new(big.Int).Set(revShare),
			ModelID:     id,
		})
		return nil
	})
	if err != nil {
		logger.Debug("buy model failed", "id", id, "buyer", buyer, "err", err)
		return nil, err
	}
	metricPurchases().Add(1)
	logger.Info("model purchased", "id", id, "buyer", buyer, "revShare", revShare)
	return revShare, nil
}

func (m *Market) pay(from, to cgfy.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := m.payments.Transfer(from, to, amount); err != nil {
		if reverts.IsRevertErr(err) {
			return reverts.Wrap(ErrWrongPayment, err)
		}
		return errors.Wrap(err, "payment")
	}
	return nil
}

func (m *Market) atomic(fn func() error) error {
	checkpoint := m.state.NewCheckpoint()
	mark := m.recorder.Len()
	if err := fn(); err != nil {
		m.state.RevertTo(checkpoint)
		m.recorder.Truncate(mark)
		return err
	}
	return nil
}
