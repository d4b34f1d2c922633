// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package staker

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
	logger = log.WithContext("pkg", "staker")

	ErrInvalidAmount     = reverts.New("invalid amount")
	ErrInsufficientStake = reverts.New("insufficient stake")
	ErrTransferFailed    = reverts.New("transfer failed")
	ErrNotEnded          = reverts.New("emission not ended")
	ErrUnauthorized      = reverts.New("unauthorized")
	ErrZeroAddress       = reverts.New("zero address")
	ErrOverflow          = reverts.New("arithmetic overflow")

	ErrNotInitialized     = errors.New("staker not initialized")
	ErrAlreadyInitialized = errors.New("staker already initialized")

	slotPool     = cgfy.BytesToBytes32([]byte("pool"))
	slotAccounts = cgfy.BytesToBytes32([]byte("accounts"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Asset is a transferable balance the staker holds in custody.
type Asset interface {
	// TransferIn pulls amount from the owner into custody.
	TransferIn(from cgfy.Address, amount *big.Int) error
	// TransferOut pays amount from custody to the recipient.
	TransferOut(to cgfy.Address, amount *big.Int) error
	BalanceOf(addr cgfy.Address) (*big.Int, error)
}

// Assets groups the assets the staker works with.
// Staked and Reward may be the same asset.
type Assets struct {
	Staked   Asset
	Reward   Asset
	RevShare Asset
}

type identified interface {
	AssetID() cgfy.Address
}

func sameAsset(a, b Asset) bool {
	if a == b {
		return true
	}
	ia, ok := a.(identified)
	if !ok {
		return false
	}
	ib, ok := b.(identified)
	return ok && ia.AssetID() == ib.AssetID()
}

// Staker implements the staking reward and revenue share ledger.
type Staker struct {
	addr     cgfy.Address
	state    *state.State
	assets   Assets
	recorder *events.Recorder

	pool     *solidity.Value[*Pool]
	accounts *solidity.Mapping[cgfy.Address, *Account]
}

// New create a staker bound to the contract address.
// Emitted events go to recorder, which may be nil.
func New(addr cgfy.Address, state *state.State, assets Assets, recorder *events.Recorder) *Staker {
	sctx := solidity.NewContext(addr, state)
	return &Staker{
		addr:     addr,
		state:    state,
		assets:   assets,
		recorder: recorder,
		pool:     solidity.NewValue[*Pool](sctx, slotPool),
		accounts: solidity.NewMapping[cgfy.Address, *Account](sctx, slotAccounts),
	}
}

// Address returns the custody address of the staker.
func (s *Staker) Address() cgfy.Address {
	return s.addr
}

// Initialize configures the emission window. The reward accumulator starts at StartPeriod.
func (s *Staker) Initialize(cfg Config) error {
	set, err := s.pool.IsSet()
	if err != nil {
		return err
	}
	if set {
		return ErrAlreadyInitialized
	}
	if cfg.Admin.IsZero() {
		return errors.WithMessage(ErrZeroAddress, "admin")
	}
	if cfg.RewardPerPeriod == nil || cfg.RewardPerPeriod.Sign() < 0 {
		return errors.WithMessage(ErrInvalidAmount, "reward per period")
	}
	if cfg.EndPeriod < cfg.StartPeriod {
		return errors.Errorf("end period %d before start period %d", cfg.EndPeriod, cfg.StartPeriod)
	}
	if err := checkUint256(cfg.RewardPerPeriod); err != nil {
		return err
	}

	logger.Info("initializing pool",
		"admin", cfg.Admin,
		"rewardPerPeriod", cfg.RewardPerPeriod,
		"start", cfg.StartPeriod,
		"end", cfg.EndPeriod,
	)
	return s.pool.Set(&Pool{
		Admin:               cfg.Admin,
		RewardPerPeriod:     new(big.Int).Set(cfg.RewardPerPeriod),
		StartPeriod:         cfg.StartPeriod,
		EndPeriod:           cfg.EndPeriod,
		LastRewardPeriod:    cfg.StartPeriod,
		TotalStaked:         new(big.Int),
		AccRewardPerShare:   new(big.Int),
		AccRevSharePerShare: new(big.Int),
		RewardCredited:      new(big.Int),
		RewardPaid:          new(big.Int),
		RevShareDeposited:   new(big.Int),
		RevSharePaid:        new(big.Int),
		RevShareReserve:     new(big.Int),
	})
}

func (s *Staker) getPool() (*Pool, error) {
	pool, err := s.pool.Get()
	if err != nil {
		return nil, err
	}
	if !pool.Initialized() {
		return nil, ErrNotInitialized
	}
	return pool, nil
}

func (s *Staker) getAccount(addr cgfy.Address) (*Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	return acc.normalize(), nil
}

// Pool returns the stored pool state, not advanced to any period.
func (s *Staker) Pool() (*Pool, error) {
	return s.getPool()
}

// PoolAt returns the pool state as if advanced to now.
func (s *Staker) PoolAt(now uint64) (*Pool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if err := pool.accumulate(now); err != nil {
		return nil, err
	}
	return pool, nil
}

// Phase returns the emission phase at now.
func (s *Staker) Phase(now uint64) (Phase, error) {
	pool, err := s.getPool()
	if err != nil {
		return NotStarted, err
	}
	return pool.Phase(now), nil
}

// TotalStaked returns the sum of all staked principal.
func (s *Staker) TotalStaked() (*big.Int, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	return pool.TotalStaked, nil
}

// AccountOf returns the ledger entry of a participant, zero valued if never staked.
func (s *Staker) AccountOf(addr cgfy.Address) (*Account, error) {
	return s.getAccount(addr)
}

// PendingReward returns the emission reward the participant could claim at now.
func (s *Staker) PendingReward(now uint64, addr cgfy.Address) (*big.Int, error) {
	reward, _, err := s.Pending(now, addr)
	return reward, err
}

// PendingRevShare returns the revenue share the participant could claim.
func (s *Staker) PendingRevShare(addr cgfy.Address) (*big.Int, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, err
	}
	_, revShare := pool.pending(acc)
	return revShare, nil
}

// Pending returns both pending amounts of the participant at now.
func (s *Staker) Pending(now uint64, addr cgfy.Address) (reward, revShare *big.Int, err error) {
	pool, err := s.PoolAt(now)
	if err != nil {
		return nil, nil, err
	}
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, nil, err
	}
	reward, revShare = pool.pending(acc)
	return reward, revShare, nil
}

// SetAdmin hands the administrator role over to newAdmin.
func (s *Staker) SetAdmin(caller, newAdmin cgfy.Address) error {
	return s.atomic("setAdmin", func() error {
		pool, err := s.getPool()
		if err != nil {
			return err
		}
		if caller != pool.Admin {
			return ErrUnauthorized
		}
		if newAdmin.IsZero() {
			return ErrZeroAddress
		}
		pool.Admin = newAdmin
		logger.Info("admin changed", "from", caller, "to", newAdmin)
		return s.pool.Set(pool)
	})
}

// Stake deposits amount of the staked asset for the participant.
// Pending rewards of both streams are paid out first.
func (s *Staker) Stake(now uint64, participant cgfy.Address, amount *big.Int) error {
	logger.Debug("staking", "participant", participant, "amount", amount, "period", now)
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	err := s.atomic("stake", func() error {
		pool, err := s.advance(now)
		if err != nil {
			return err
		}
		acc, err := s.getAccount(participant)
		if err != nil {
			return err
		}
		known, err := s.accounts.Has(participant)
		if err != nil {
			return err
		}
		if !known {
			pool.Participants++
		}
		payout := s.settle(pool, acc)

		if err := s.transferIn(s.assets.Staked, participant, amount); err != nil {
			return err
		}
		acc.Amount = new(big.Int).Add(acc.Amount, amount)
		pool.TotalStaked = new(big.Int).Add(pool.TotalStaked, amount)
		if err := checkUint256(acc.Amount, pool.TotalStaked); err != nil {
			return err
		}
		pool.resetDebts(acc)

		if err := s.save(pool, participant, acc); err != nil {
			return err
		}
		if err := s.pay(participant, payout); err != nil {
			return err
		}
		s.emit(events.Staked, participant, amount)
		return nil
	})
	if err != nil {
		logger.Debug("stake failed", "participant", participant, "err", err)
		return err
	}
	logger.Info("staked", "participant", participant, "amount", amount)
	return nil
}

// Withdraw returns amount of principal to the participant.
// Pending rewards of both streams are paid out first.
func (s *Staker) Withdraw(now uint64, participant cgfy.Address, amount *big.Int) error {
	logger.Debug("withdrawing", "participant", participant, "amount", amount, "period", now)
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	err := s.atomic("withdraw", func() error {
		acc, err := s.getAccount(participant)
		if err != nil {
			return err
		}
		if acc.Amount.Cmp(amount) < 0 {
			return ErrInsufficientStake
		}
		pool, err := s.advance(now)
		if err != nil {
			return err
		}
		payout := s.settle(pool, acc)

		acc.Amount = new(big.Int).Sub(acc.Amount, amount)
		pool.TotalStaked = new(big.Int).Sub(pool.TotalStaked, amount)
		pool.resetDebts(acc)

		if err := s.save(pool, participant, acc); err != nil {
			return err
		}
		if err := s.pay(participant, payout); err != nil {
			return err
		}
		if err := s.transferOut(s.assets.Staked, participant, amount); err != nil {
			return err
		}
		s.emit(events.Withdrawn, participant, amount)
		return nil
	})
	if err != nil {
		logger.Debug("withdraw failed", "participant", participant, "err", err)
		return err
	}
	logger.Info("withdrew", "participant", participant, "amount", amount)
	return nil
}

// advance loads the pool and brings the reward accumulator up to now.
// The caller is responsible for saving the pool.
func (s *Staker) advance(now uint64) (*Pool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if err := pool.accumulate(now); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *Staker) save(pool *Pool, participant cgfy.Address, acc *Account) error {
	if err := s.accounts.Set(participant, acc); err != nil {
		return err
	}
	if err := s.pool.Set(pool); err != nil {
		return err
	}
	metricTotalStaked().Set(wholeTokens(pool.TotalStaked))
	return nil
}

// atomic runs fn so that it either fully applies or leaves no state and events behind.
func (s *Staker) atomic(op string, fn func() error) error {
	checkpoint := s.state.NewCheckpoint()
	mark := s.recorder.Len()
	if err := fn(); err != nil {
		s.state.RevertTo(checkpoint)
		s.recorder.Truncate(mark)
		result := "error"
		if reverts.IsRevertErr(err) {
			result = "revert"
		}
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
		return err
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	return nil
}

func (s *Staker) emit(kind events.Kind, participant cgfy.Address, amount *big.Int) {
	s.recorder.Emit(&events.Event{
		Contract:    s.addr,
		Kind:        kind,
		Participant: participant,
		Amount:      new(big.Int).Set(amount),
	})
}

func (s *Staker) transferIn(asset Asset, from cgfy.Address, amount *big.Int) error {
	if err := asset.TransferIn(from, amount); err != nil {
		if reverts.IsRevertErr(err) {
			return reverts.Wrap(ErrTransferFailed, err)
		}
		return errors.Wrap(err, "transfer in")
	}
	return nil
}

func (s *Staker) transferOut(asset Asset, to cgfy.Address, amount *big.Int) error {
	if err := asset.TransferOut(to, amount); err != nil {
		if reverts.IsRevertErr(err) {
			return reverts.Wrap(ErrTransferFailed, err)
		}
		return errors.Wrap(err, "transfer out")
	}
	return nil
}

func checkUint256(values ...*big.Int) error {
	for _, v := range values {
		if err := solidity.CheckUint256(v); err != nil {
			return reverts.Wrap(ErrOverflow, err)
		}
	}
	return nil
}

func wholeTokens(v *big.Int) int64 {
	return new(big.Int).Quo(v, cgfy.Ether).Int64()
}
