// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"io"
)

// Flusher is implemented by structures buffering data before it is written
// to their backing storage.
type Flusher interface {
	Flush() error
}

// FlushAndCloser is implemented by structures owning persistent resources.
type FlushAndCloser interface {
	Flusher
	io.Closer
}

// MapEntry is a key/value pair, used for instance when listing the content
// of a scalar dictionary.
type MapEntry[K any, V any] struct {
	Key K
	Val V
}

func (e MapEntry[K, V]) String() string {
	return fmt.Sprintf("Entry: %v -> %v", e.Key, e.Val)
}
