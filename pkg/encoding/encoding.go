// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package encoding

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"

	"github.com/lassandro/lc3vm/pkg/translate"
)

var f = translate.From

var (
	ErrInvalidHex = errors.New(f("invalid hex string"))
	ErrImageShort = errors.New(f("image has no origin word"))
	ErrImageOdd   = errors.New(f("image has an odd number of bytes"))
	ErrImageLarge = errors.New(f("image does not fit in memory"))
)

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i != 1 || s[0] != '0' {
		return 0, ErrInvalidHex
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123, #-12
func DecodeInt(s string) (int16, error) {
	s = strings.TrimPrefix(s, "#")

	result, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return int16(result), nil
}

// DecodeAddr accepts either notation understood by DecodeHex or DecodeInt.
func DecodeAddr(s string) (uint16, error) {
	if strings.ContainsAny(s, "xX") {
		return DecodeHex(s)
	}

	value, err := DecodeInt(s)

	return uint16(value), err
}

// SignExtend replicates bit (bitcount-1) of value into bits bitcount..15.
func SignExtend(value uint16, bitcount uint16) uint16 {
	if (value>>(bitcount-1))&0x1 == 1 {
		value |= (0xFFFF << bitcount)
	}

	return value
}

// ZeroExtend clears every bit at or above bitcount.
func ZeroExtend(value uint16, bitcount uint16) uint16 {
	if bitcount >= 16 {
		return value
	}

	return value & ^(0xFFFF << bitcount)
}

// DecodeImage splits a big-endian object image into its origin word and the
// words that follow it.
func DecodeImage(image []byte) (origin uint16, words []uint16, err error) {
	if len(image) < 2 {
		return 0, nil, ErrImageShort
	}

	if len(image)%2 != 0 {
		return 0, nil, ErrImageOdd
	}

	if len(image)/2-1 > 1<<16 {
		return 0, nil, ErrImageLarge
	}

	origin = binary.BigEndian.Uint16(image)
	words = make([]uint16, 0, len(image)/2-1)

	for i := 2; i < len(image); i += 2 {
		words = append(words, binary.BigEndian.Uint16(image[i:]))
	}

	return origin, words, nil
}

// EncodeImage is the inverse of DecodeImage.
func EncodeImage(origin uint16, words []uint16) []byte {
	image := make([]byte, 2*(len(words)+1))
	binary.BigEndian.PutUint16(image, origin)

	for i, word := range words {
		binary.BigEndian.PutUint16(image[2*(i+1):], word)
	}

	return image
}
