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

package machine

// Memory is the word-addressed backing store seen by the instruction
// handlers. Every uint16 is a valid address.
type Memory interface {
	Read(addr uint16) uint16
	Write(addr uint16, value uint16)
}

// RAM is a flat array covering the whole address space.
type RAM [MEMSIZE]uint16

func (ram *RAM) Read(addr uint16) uint16 {
	return ram[addr]
}

func (ram *RAM) Write(addr uint16, value uint16) {
	ram[addr] = value
}

// Reset zeroes every cell.
func (ram *RAM) Reset() {
	*ram = RAM{}
}

// resetter is implemented by stores that can be cleared in place.
type resetter interface {
	Reset()
}

func clearMemory(mem Memory) {
	if r, ok := mem.(resetter); ok {
		r.Reset()
		return
	}

	for addr := 0; addr < MEMSIZE; addr++ {
		mem.Write(uint16(addr), 0x0000)
	}
}
