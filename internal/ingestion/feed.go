// Package ingestion turns a live order-book feed into stored events:
// a websocket client for the upstream stream, a book differ that
// classifies level changes, and an ingester that persists the results.
package ingestion

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Feed message types.
const (
	msgTypeBook  = "book"
	msgTypeTrade = "trade"
)

// FeedMessage is one raw message from the upstream stream. Book messages
// carry full top-of-book depth snapshots; trade messages carry single
// executions.
type FeedMessage struct {
	Type        string      `json:"type"`
	Symbol      string      `json:"symbol"`
	TimestampMs int64       `json:"ts"`
	Bids        [][2]string `json:"bids,omitempty"` // [price, quantity], best first
	Asks        [][2]string `json:"asks,omitempty"`
	Price       string      `json:"price,omitempty"`
	Quantity    string      `json:"qty,omitempty"`
	Side        string      `json:"side,omitempty"` // buy or sell
}

// BookLevel is one parsed depth level.
type BookLevel struct {
	Price    float64
	Quantity float64
}

// BookSnapshot is a parsed depth snapshot, best levels first.
type BookSnapshot struct {
	Symbol      string
	TimestampMs int64
	Bids        []BookLevel
	Asks        []BookLevel
}

// Trade is a parsed execution.
type Trade struct {
	Symbol      string
	TimestampMs int64
	Price       float64
	Quantity    float64
	IsBuy       bool
}

// parseMessage decodes a raw frame into a snapshot or a trade. Exactly
// one of the two return values is non-nil on success.
func parseMessage(data []byte) (*BookSnapshot, *Trade, error) {
	var msg FeedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, nil, fmt.Errorf("decode feed message: %w", err)
	}
	if msg.Symbol == "" {
		return nil, nil, fmt.Errorf("feed message missing symbol")
	}

	switch msg.Type {
	case msgTypeBook:
		snap := &BookSnapshot{Symbol: msg.Symbol, TimestampMs: msg.TimestampMs}
		var err error
		if snap.Bids, err = parseLevels(msg.Bids); err != nil {
			return nil, nil, fmt.Errorf("parse bids: %w", err)
		}
		if snap.Asks, err = parseLevels(msg.Asks); err != nil {
			return nil, nil, fmt.Errorf("parse asks: %w", err)
		}
		return snap, nil, nil

	case msgTypeTrade:
		price, err := strconv.ParseFloat(msg.Price, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse trade price %q: %w", msg.Price, err)
		}
		qty, err := strconv.ParseFloat(msg.Quantity, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse trade quantity %q: %w", msg.Quantity, err)
		}
		return nil, &Trade{
			Symbol:      msg.Symbol,
			TimestampMs: msg.TimestampMs,
			Price:       price,
			Quantity:    qty,
			IsBuy:       msg.Side == "buy",
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown feed message type %q", msg.Type)
	}
}

func parseLevels(raw [][2]string) ([]BookLevel, error) {
	levels := make([]BookLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse level price %q: %w", pair[0], err)
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse level quantity %q: %w", pair[1], err)
		}
		levels = append(levels, BookLevel{Price: price, Quantity: qty})
	}
	return levels, nil
}
