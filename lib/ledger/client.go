package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Reader is the read side of the ledger: object fetch, multi-object fetch,
// dynamic-field enumeration and owned-object listing. Sync components depend
// on this interface, never on the concrete client, so tests can inject fakes.
type Reader interface {
	GetObject(ctx context.Context, id string, opts ObjectOptions) (*ObjectData, error)
	// MultiGetObjects returns one entry per requested id, in request order.
	// A missing object yields a nil entry, not a call-level error.
	MultiGetObjects(ctx context.Context, ids []string, opts ObjectOptions) ([]*ObjectData, error)
	GetDynamicFields(ctx context.Context, parentID string) ([]DynamicFieldRef, error)
	GetOwnedObjects(ctx context.Context, owner string, structType string, opts ObjectOptions) ([]*ObjectData, error)
}

// Client adds transaction construction and submission to the read side.
type Client interface {
	Reader
	BuildMoveCall(ctx context.Context, call MoveCall) (string, error)
	ExecuteTransaction(ctx context.Context, txBytes string, signatures []string) (*TxResult, error)
}

const ownedObjectsPageSize = 50

type RPCClient struct {
	url        string
	httpClient *http.Client
}

func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (client *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	request_body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      uuid.New().String(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", client.url, bytes.NewReader(request_body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, string(body))
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return nil
}

func (client *RPCClient) GetObject(ctx context.Context, id string, opts ObjectOptions) (*ObjectData, error) {
	var response objectResponse
	if err := client.call(ctx, "sui_getObject", []any{id, opts}, &response); err != nil {
		return nil, err
	}
	if response.Error != nil || response.Data == nil {
		return nil, fmt.Errorf("object %s: %w", id, ErrNotFound)
	}
	return response.Data, nil
}

func (client *RPCClient) MultiGetObjects(ctx context.Context, ids []string, opts ObjectOptions) ([]*ObjectData, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var responses []objectResponse
	if err := client.call(ctx, "sui_multiGetObjects", []any{ids, opts}, &responses); err != nil {
		return nil, err
	}

	objects := make([]*ObjectData, len(ids))
	for i, response := range responses {
		if i >= len(objects) {
			break
		}
		objects[i] = response.Data
	}
	return objects, nil
}

func (client *RPCClient) GetDynamicFields(ctx context.Context, parentID string) ([]DynamicFieldRef, error) {
	var refs []DynamicFieldRef
	var cursor *string
	for {
		var page dynamicFieldsPage
		if err := client.call(ctx, "suix_getDynamicFields", []any{parentID, cursor, nil}, &page); err != nil {
			return nil, err
		}
		refs = append(refs, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return refs, nil
		}
		cursor = page.NextCursor
	}
}

func (client *RPCClient) GetOwnedObjects(ctx context.Context, owner string, structType string, opts ObjectOptions) ([]*ObjectData, error) {
	query := map[string]any{
		"filter": map[string]any{
			"MatchAll": []any{
				map[string]any{"StructType": structType},
			},
		},
		"options": opts,
	}

	var objects []*ObjectData
	var cursor *string
	for {
		var page ownedObjectsPage
		if err := client.call(ctx, "suix_getOwnedObjects", []any{owner, query, cursor, ownedObjectsPageSize}, &page); err != nil {
			return nil, err
		}
		for _, response := range page.Data {
			if response.Data != nil {
				objects = append(objects, response.Data)
			}
		}
		if !page.HasNextPage || page.NextCursor == nil {
			return objects, nil
		}
		cursor = page.NextCursor
	}
}
