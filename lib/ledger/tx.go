package ledger

import (
	"context"
	"fmt"
)

// MoveCall is one entry-point invocation: a target identifier plus an ordered
// argument list of object references and primitive-encoded values.
type MoveCall struct {
	Sender    string
	Package   string
	Module    string
	Function  string
	TypeArgs  []string
	Arguments []any
	GasBudget uint64
}

func (call MoveCall) Target() string {
	return fmt.Sprintf("%s::%s::%s", call.Package, call.Module, call.Function)
}

// Submitter signs and executes a prepared move call. The concrete signer is a
// collaborator (wallet); callers never assume the transaction finalized
// before the next explicit refetch.
type Submitter interface {
	SignAndExecute(ctx context.Context, call MoveCall) (*TxResult, error)
}

type TxResult struct {
	Digest string `json:"digest"`
	Status string `json:"status"`
}

func (result *TxResult) Succeeded() bool {
	return result != nil && result.Status == "success"
}

// TransactionRejectedError means the ledger refused the transaction. There is
// no automatic resubmission: a duplicate could double-apply a turn on-chain.
type TransactionRejectedError struct {
	Digest string
	Reason string
}

func (e *TransactionRejectedError) Error() string {
	return fmt.Sprintf("transaction %s rejected by ledger: %s", e.Digest, e.Reason)
}

type transactionBytes struct {
	TxBytes string `json:"txBytes"`
}

type transactionBlockResponse struct {
	Digest  string `json:"digest"`
	Effects struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
}

// BuildMoveCall asks the fullnode to serialize the call into transaction
// bytes the signer can sign.
func (client *RPCClient) BuildMoveCall(ctx context.Context, call MoveCall) (string, error) {
	if call.TypeArgs == nil {
		call.TypeArgs = []string{}
	}
	if call.Arguments == nil {
		call.Arguments = []any{}
	}
	params := []any{
		call.Sender,
		call.Package,
		call.Module,
		call.Function,
		call.TypeArgs,
		call.Arguments,
		nil, // gas object, picked by the node
		fmt.Sprintf("%d", call.GasBudget),
	}

	var built transactionBytes
	if err := client.call(ctx, "unsafe_moveCall", params, &built); err != nil {
		return "", fmt.Errorf("failed to build move call %s: %w", call.Target(), err)
	}
	return built.TxBytes, nil
}

func (client *RPCClient) ExecuteTransaction(ctx context.Context, txBytes string, signatures []string) (*TxResult, error) {
	params := []any{
		txBytes,
		signatures,
		map[string]bool{"showEffects": true, "showEvents": true},
		"WaitForLocalExecution",
	}

	var response transactionBlockResponse
	if err := client.call(ctx, "sui_executeTransactionBlock", params, &response); err != nil {
		return nil, err
	}

	result := &TxResult{
		Digest: response.Digest,
		Status: response.Effects.Status.Status,
	}
	if !result.Succeeded() {
		return result, &TransactionRejectedError{
			Digest: response.Digest,
			Reason: response.Effects.Status.Error,
		}
	}
	return result, nil
}
