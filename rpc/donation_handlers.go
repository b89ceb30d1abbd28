package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"donorchain/crypto"
	"donorchain/native/donation"
	"donorchain/observability/metrics"
)

type submitParams struct {
	Caller   string `json:"caller"`
	Amount   string `json:"amount"`
	Height   uint64 `json:"height"`
	Category string `json:"category,omitempty"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type setMinimumParams struct {
	Caller  string `json:"caller"`
	Minimum string `json:"minimum"`
}

type withdrawParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type donorParams struct {
	Donor string `json:"donor"`
}

type tokenParams struct {
	TokenID uint64 `json:"tokenId"`
}

type listParams struct {
	Donor  string `json:"donor"`
	Offset uint64 `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type receiptResult struct {
	Donor    string `json:"donor"`
	Amount   string `json:"amount"`
	Height   uint64 `json:"height"`
	TokenID  uint64 `json:"tokenId"`
	Category string `json:"category,omitempty"`
}

type donorResult struct {
	LifetimeAmount     string `json:"lifetimeAmount"`
	DonationCount      uint64 `json:"donationCount"`
	LastDonationHeight uint64 `json:"lastDonationHeight"`
	RewardClaimed      bool   `json:"rewardClaimed"`
	Streak             uint64 `json:"streak"`
}

type statsResult struct {
	CumulativeAmount string `json:"cumulativeAmount"`
	UniqueDonors     uint64 `json:"uniqueDonors"`
	MinimumDonation  string `json:"minimumDonation"`
	Paused           bool   `json:"paused"`
	NextSequence     uint64 `json:"nextSequence"`
}

func decodeSingleParam(req *RPCRequest, out interface{}) (string, bool) {
	if len(req.Params) != 1 {
		return "exactly one parameter object expected", false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return "invalid parameter object: " + err.Error(), false
	}
	return "", true
}

func decodeBech32(value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Raw(), nil
}

func parseAmount(value string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || amount.Sign() < 0 {
		return nil, false
	}
	return amount, true
}

func newReceiptResult(receipt *donation.Receipt) receiptResult {
	return receiptResult{
		Donor:    crypto.MustNewAddress(receipt.Donor[:]).String(),
		Amount:   receipt.Amount.String(),
		Height:   receipt.Height,
		TokenID:  receipt.Sequence,
		Category: receipt.Category,
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, req *RPCRequest) {
	var params submitParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, ok := parseAmount(params.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "amount must be a non-negative decimal string", nil)
		return
	}
	receipt, err := s.engine.SubmitDonation(caller, amount, params.Height, params.Category)
	if err != nil {
		metrics.Donation().ObserveRejected(rejectionReason(err))
		writeEngineError(w, req.ID, err)
		return
	}
	amt, _ := new(big.Float).SetInt(receipt.Amount).Float64()
	metrics.Donation().ObserveSubmitted(receipt.Category, amt)
	if stats, statsErr := s.engine.Statistics(); statsErr == nil {
		metrics.Donation().SetUniqueDonors(stats.UniqueDonors)
	}
	writeResult(w, req.ID, newReceiptResult(receipt))
}

func (s *Server) handleClaimBonus(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	bonus, err := s.engine.ClaimBonus(caller)
	if err != nil {
		metrics.Donation().ObserveRejected(rejectionReason(err))
		writeEngineError(w, req.ID, err)
		return
	}
	metrics.Donation().ObserveBonusClaimed()
	writeResult(w, req.ID, map[string]string{"bonus": bonus.String()})
}

func (s *Server) handleSetMinimum(w http.ResponseWriter, req *RPCRequest) {
	var params setMinimumParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	minimum, ok := parseAmount(params.Minimum)
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "minimum must be a non-negative decimal string", nil)
		return
	}
	if err := s.engine.SetMinimumDonation(caller, minimum); err != nil {
		metrics.Donation().ObserveRejected(rejectionReason(err))
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"minimum": minimum.String()})
}

func (s *Server) handleTogglePause(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	paused, err := s.engine.TogglePause(caller)
	if err != nil {
		metrics.Donation().ObserveRejected(rejectionReason(err))
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"paused": paused})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, req *RPCRequest) {
	var params withdrawParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, ok := parseAmount(params.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "amount must be a non-negative decimal string", nil)
		return
	}
	if err := s.engine.Withdraw(caller, amount); err != nil {
		metrics.Donation().ObserveRejected(rejectionReason(err))
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"amount": amount.String()})
}

func (s *Server) handleGetDonor(w http.ResponseWriter, req *RPCRequest) {
	var params donorParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	donor, err := decodeBech32(params.Donor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid donor address", err.Error())
		return
	}
	rec, err := s.engine.DonorInfo(donor)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, donorResult{
		LifetimeAmount:     rec.LifetimeAmount.String(),
		DonationCount:      rec.DonationCount,
		LastDonationHeight: rec.LastDonationHeight,
		RewardClaimed:      rec.RewardClaimed,
		Streak:             rec.Streak,
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	receipt, err := s.engine.Donation(params.TokenID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, newReceiptResult(receipt))
}

func (s *Server) handleListByDonor(w http.ResponseWriter, req *RPCRequest) {
	var params listParams
	if msg, ok := decodeSingleParam(req, &params); !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, msg, nil)
		return
	}
	donor, err := decodeBech32(params.Donor)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid donor address", err.Error())
		return
	}
	receipts, err := s.engine.DonationsByDonor(donor, params.Offset, params.Limit)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	results := make([]receiptResult, 0, len(receipts))
	for _, receipt := range receipts {
		results = append(results, newReceiptResult(receipt))
	}
	writeResult(w, req.ID, results)
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, req *RPCRequest) {
	stats, err := s.engine.Statistics()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, statsResult{
		CumulativeAmount: stats.CumulativeAmount.String(),
		UniqueDonors:     stats.UniqueDonors,
		MinimumDonation:  stats.MinimumDonation.String(),
		Paused:           stats.Paused,
		NextSequence:     stats.NextSequence,
	})
}
