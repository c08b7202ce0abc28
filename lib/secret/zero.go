// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "runtime"

// Zero overwrites every byte of data with zeros. Use it on transient
// slices holding key material or passwords that never entered a Buffer,
// immediately after their last use.
//
// The KeepAlive fence prevents the compiler from eliding the writes as
// dead stores when data is not referenced afterwards.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
	runtime.KeepAlive(data)
}
