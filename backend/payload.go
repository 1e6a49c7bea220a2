// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"fmt"

	"github.com/golang/snappy"
)

// Variable-width payloads are framed by a single header byte describing the
// encoding of the rest of the record.
const (
	payloadRaw    byte = 0
	payloadSnappy byte = 1
)

// CompressionThreshold is the payload size from which on payloads are
// compressed before being written to a substrate.
const CompressionThreshold = 128

// EncodePayload frames a variable-width payload for storage. Payloads of at
// least CompressionThreshold bytes are snappy compressed if this reduces
// their size.
func EncodePayload(data []byte) []byte {
	if len(data) >= CompressionThreshold {
		compressed := snappy.Encode(nil, data)
		if len(compressed) < len(data) {
			res := make([]byte, 1+len(compressed))
			res[0] = payloadSnappy
			copy(res[1:], compressed)
			return res
		}
	}
	res := make([]byte, 1+len(data))
	res[0] = payloadRaw
	copy(res[1:], data)
	return res
}

// DecodePayload reverses EncodePayload.
func DecodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("invalid payload: missing header")
	}
	switch data[0] {
	case payloadRaw:
		res := make([]byte, len(data)-1)
		copy(res, data[1:])
		return res, nil
	case payloadSnappy:
		res, err := snappy.Decode(nil, data[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid compressed payload; %w", err)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("invalid payload: unknown encoding %d", data[0])
	}
}
