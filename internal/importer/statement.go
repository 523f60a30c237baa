package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itaulink/itaulink/internal/logger"
	"github.com/itaulink/itaulink/internal/model"
)

// ErrNoStatementData is returned when a statement response carries neither
// the historical nor the current-month movement list.
var ErrNoStatementData = errors.New("no statement data")

type statementResponse struct {
	Msg *struct {
		Data map[string]json.RawMessage `json:"data"`
	} `json:"itaulink_msg"`
}

type movements struct {
	Items *[]json.RawMessage `json:"movimientos"`
}

// Keys under itaulink_msg.data, tried in order.
const (
	keyHistorical   = "movimientosHistoricos"
	keyCurrentMonth = "movimientosMesActual"
)

// ParseStatement decodes one month's statement body and classifies its
// movements. Invalid records are logged and dropped; only a malformed body
// or a missing or null movement list is an error.
func (c *Classifier) ParseStatement(ctx context.Context, body []byte) ([]model.Transaction, error) {
	var resp statementResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding statement: %w", err)
	}
	if resp.Msg == nil || resp.Msg.Data == nil {
		return nil, fmt.Errorf("decoding statement: missing itaulink_msg.data: %w", ErrNoStatementData)
	}

	var list json.RawMessage
	for _, key := range []string{keyHistorical, keyCurrentMonth} {
		if v, ok := resp.Msg.Data[key]; ok {
			list = v
			break
		}
	}
	if list == nil {
		return nil, ErrNoStatementData
	}

	var m movements
	if err := json.Unmarshal(list, &m); err != nil {
		return nil, fmt.Errorf("decoding movements: %w", err)
	}
	if m.Items == nil {
		return nil, fmt.Errorf("decoding movements: missing \"movimientos\": %w", ErrNoStatementData)
	}
	items := *m.Items

	log := logger.FromContext(ctx)
	txns := make([]model.Transaction, 0, len(items))
	for _, item := range items {
		var raw RawTransaction
		if err := json.Unmarshal(item, &raw); err != nil {
			log.Warn().Err(err).RawJSON("record", item).Msg("undecodable transaction, skipping")
			continue
		}
		tx, err := c.Classify(raw)
		if err != nil {
			log.Warn().Err(err).RawJSON("record", item).Msg("invalid transaction, skipping")
			continue
		}
		txns = append(txns, tx)
	}
	return txns, nil
}
