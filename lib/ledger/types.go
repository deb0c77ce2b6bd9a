package ledger

import "encoding/json"

// ObjectOptions selects which parts of an object the fullnode returns.
type ObjectOptions struct {
	ShowContent bool `json:"showContent"`
	ShowOwner   bool `json:"showOwner"`
}

// DefaultObjectOptions matches what every read in this service needs: the
// decoded move fields plus the owner address.
func DefaultObjectOptions() ObjectOptions {
	return ObjectOptions{ShowContent: true, ShowOwner: true}
}

// ObjectData is one ledger object as returned by the fullnode.
type ObjectData struct {
	ObjectID string          `json:"objectId"`
	Version  string          `json:"version"`
	Digest   string          `json:"digest"`
	Owner    json.RawMessage `json:"owner,omitempty"`
	Content  *ObjectContent  `json:"content,omitempty"`
}

type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// objectResponse is the per-object envelope: exactly one of Data or Error is
// set. A multi-get returns one envelope per requested id, in request order.
type objectResponse struct {
	Data  *ObjectData     `json:"data"`
	Error *objectNotExist `json:"error"`
}

type objectNotExist struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

// DynamicFieldRef is one entry of a ledger-side table, addressable as its own
// object. The enumeration is unordered.
type DynamicFieldRef struct {
	ObjectID string `json:"objectId"`
}

type dynamicFieldsPage struct {
	Data        []DynamicFieldRef `json:"data"`
	NextCursor  *string           `json:"nextCursor"`
	HasNextPage bool              `json:"hasNextPage"`
}

type ownedObjectsPage struct {
	Data        []objectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// AddressOwner extracts the owning wallet address, or "" when the object is
// not address-owned (shared objects and tables).
func (data *ObjectData) AddressOwner() string {
	if data == nil || len(data.Owner) == 0 {
		return ""
	}
	var owner struct {
		AddressOwner string `json:"AddressOwner"`
	}
	if err := json.Unmarshal(data.Owner, &owner); err != nil {
		return ""
	}
	return owner.AddressOwner
}
