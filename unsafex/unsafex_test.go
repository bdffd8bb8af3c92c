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

package unsafex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryToString(t *testing.T) {
	b := []byte("block-header-preview")
	s := BinaryToString(b)
	assert.Equal(t, string(b), s)
	b[0] = 'x'
	assert.Equal(t, string(b), s, "aliases the same storage")
}

func BenchmarkBinaryToString(b *testing.B) {
	x := []byte("block-header-preview")
	for i := 0; i < b.N; i++ {
		_ = BinaryToString(x)
	}
}

func TestStringToBinary(t *testing.T) {
	x := []byte("block-header-preview")
	s := string(x)
	b := StringToBinary(s)
	assert.Equal(t, s, string(b))
	b[0] = 'x'
	assert.Equal(t, s, string(b), "aliases the same storage")
}

func BenchmarkStringToBinary(b *testing.B) {
	s := "block-header-preview"
	for i := 0; i < b.N; i++ {
		_ = StringToBinary(s)
	}
}
