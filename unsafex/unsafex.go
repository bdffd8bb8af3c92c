/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package unsafex holds the repository's one reviewed pocket of raw
// []byte/string conversions, kept separate from the block-layout math in
// segalloc so the unsafe surface stays small and auditable.
package unsafex

import "unsafe"

// BinaryToString converts []byte to string without copying.
// The returned string aliases b; mutating b after the call mutates the
// string too, which is only safe for read-only, short-lived views such as
// a debug dump of a block's payload.
func BinaryToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBinary converts string to []byte without copying.
// The returned slice aliases the string's storage, which is normally
// read-only; writing to it panics unless s was built from a []byte that
// is itself writable.
func StringToBinary(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
