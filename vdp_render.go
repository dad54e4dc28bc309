// vdp_render.go - per-frame cache rebuilds and the per-pixel plane/sprite
// compositing pipeline.

package main

// rebuildColourCache recomputes every CRAM entry's RGB value, run once per
// frame at beam (0,0) per spec.md §4.3.
func (v *VDP) rebuildColourCache() {
	for i := range v.cram {
		v.rebuildColourEntry(i)
	}
}

// rebuildColourEntry decodes one 9-bit CRAM entry (low byte ---- BBB-, high
// byte GGGH RRR-) through the Genesis 8-level luminance table.
func (v *VDP) rebuildColourEntry(i int) {
	entry := v.cram[i]
	lo := byte(entry)
	hi := byte(entry >> 8)
	b := (lo >> 1) & 0x7
	g := (hi >> 5) & 0x7
	r := (hi >> 1) & 0x7
	v.colourCache[i] = rgb{genesisLuma[r], genesisLuma[g], genesisLuma[b]}
}

// rebuildSpriteCache walks the sprite-attribute table's link chain (up to
// 80 sprites), then sorts by top, then left, then priority-false-first.
func (v *VDP) rebuildSpriteCache() {
	base := uint16(v.regs[vdpRegSpriteTableBase]&0x7F) << 9
	v.spriteCache = v.spriteCache[:0]

	link := 0
	for i := 0; i < 80; i++ {
		off := base + uint16(link)*8
		y := int(v.vram[off])<<8 | int(v.vram[off+1])
		y &= 0x3FF
		sizeByte := v.vram[off+3]
		width := int((sizeByte>>2)&0x3) + 1
		height := int(sizeByte&0x3) + 1
		attr := int(v.vram[off+4])<<8 | int(v.vram[off+5])
		x := int(v.vram[off+6])<<8 | int(v.vram[off+7])
		x &= 0x3FF

		v.spriteCache = append(v.spriteCache, spriteEntry{
			y:        y - 128,
			x:        x - 128,
			width:    width,
			height:   height,
			pattern:  uint16(attr & 0x7FF),
			palette:  (attr >> 13) & 0x3,
			priority: attr&0x8000 != 0,
			vflip:    attr&0x1000 != 0,
			hflip:    attr&0x0800 != 0,
		})
		next := int(v.vram[off+2]) & 0x7F
		if next == 0 {
			break
		}
		link = next
	}

	// stable sort by (top, left, priority-false-first)
	for i := 1; i < len(v.spriteCache); i++ {
		for j := i; j > 0 && spriteLess(v.spriteCache[j], v.spriteCache[j-1]); j-- {
			v.spriteCache[j], v.spriteCache[j-1] = v.spriteCache[j-1], v.spriteCache[j]
		}
	}
}

func spriteLess(a, b spriteEntry) bool {
	if a.y != b.y {
		return a.y < b.y
	}
	if a.x != b.x {
		return a.x < b.x
	}
	if a.priority != b.priority {
		return !a.priority // priority-false sorts first
	}
	return false
}

// takeScrollSnapshots reads the whole-plane scroll values from VSRAM; the
// per-line/per-cell modes (selected by Mode3 HS) resample during pixel
// sampling instead of snapshotting once.
func (v *VDP) takeScrollSnapshots() {
	v.vScrollSnapshot[0] = v.vsram[0] & 0x3FF
	v.vScrollSnapshot[1] = v.vsram[1] & 0x3FF
	hTable := uint16(v.regs[vdpRegHScrollTableBase]&0x3F) << 10
	v.hScrollSnapshot[0] = v.vramWord(hTable) & 0x3FF
	v.hScrollSnapshot[1] = v.vramWord(hTable+2) & 0x3FF
}

func (v *VDP) vramWord(addr uint16) uint16 {
	return uint16(v.vram[addr])<<8 | uint16(v.vram[addr+1])
}

// renderPixel composes one active-area pixel in the documented priority
// order: background, plane B, plane A (replaced by the window inside its
// programmed rectangle), sprite, then each layer's priority pass.
func (v *VDP) renderPixel(x, y int) {
	bg := v.colourCache[v.regs[vdpRegBackgroundColor]&0x3F]
	out := bg

	bPix, bPrio := v.samplePlane(planeB, x, y)
	if !bPrio && bPix.opaque {
		out = bPix.colour
	}

	aPix, aPrio := v.sampleAOrWindow(x, y)
	if !aPrio && aPix.opaque {
		out = aPix.colour
	}

	sPix, sPrio, collided := v.sampleSprite(x, y)
	if collided {
		v.scol = true
	}
	if !sPrio && sPix.opaque {
		out = sPix.colour
	}
	if bPrio && bPix.opaque {
		out = bPix.colour
	}
	if aPrio && aPix.opaque {
		out = aPix.colour
	}
	if sPrio && sPix.opaque {
		out = sPix.colour
	}

	if y < 240 {
		v.frame[y*activeWidth+x] = out
	}
}

type samplePixel struct {
	colour rgb
	opaque bool
}

const (
	planeA = 0
	planeB = 1
)

// sampleAOrWindow renders plane A, substituting the window plane inside the
// rectangle programmed by registers 17/18 (SPEC_FULL.md §7 supplement).
func (v *VDP) sampleAOrWindow(x, y int) (samplePixel, bool) {
	wx := int(v.regs[vdpRegWindowX]&0x1F) * 16
	wy := int(v.regs[vdpRegWindowY]&0x1F) * 8
	rightHalf := v.regs[vdpRegWindowX]&0x80 != 0
	bottomHalf := v.regs[vdpRegWindowY]&0x80 != 0

	inWindow := false
	if rightHalf && x >= wx {
		inWindow = true
	} else if !rightHalf && wx > 0 && x < wx {
		inWindow = true
	}
	if bottomHalf && y >= wy {
		inWindow = true
	} else if !bottomHalf && wy > 0 && y < wy {
		inWindow = true
	}

	if inWindow {
		return v.sampleNametable(uint16(v.regs[vdpRegWindowNameBase]&0x1E)<<10, x, y, 0, 0)
	}
	return v.samplePlane(planeA, x, y)
}

func (v *VDP) samplePlane(plane int, x, y int) (samplePixel, bool) {
	var nameBase uint16
	var hScroll, vScroll uint16
	if plane == planeA {
		nameBase = uint16(v.regs[vdpRegPlaneANameBase]&0x38) << 10
		hScroll = v.hScrollSnapshot[0]
		vScroll = v.vScrollSnapshot[0]
	} else {
		nameBase = uint16(v.regs[vdpRegPlaneBNameBase]&0x7) << 13
		hScroll = v.hScrollSnapshot[1]
		vScroll = v.vScrollSnapshot[1]
	}
	return v.sampleNametable(nameBase, x, y, hScroll, vScroll)
}

// planeCellsWide/High fix every plane's nametable at the common 64x32
// cells. The plane-size register is not read, so other nametable sizes
// are not supported.
const (
	planeCellsWide = 64
	planeCellsHigh = 32
)

func (v *VDP) sampleNametable(nameBase uint16, x, y int, hScroll, vScroll uint16) (samplePixel, bool) {
	sx := (uint16(x) - hScroll) & 0x3FF
	sy := (uint16(y) + vScroll) & 0xFF

	cellX := int(sx/8) % planeCellsWide
	cellY := int(sy/8) % planeCellsHigh
	entryAddr := nameBase + uint16(cellY*planeCellsWide+cellX)*2
	entry := v.vramWord(entryAddr)

	pattern := entry & 0x7FF
	palette := int((entry >> 13) & 0x3)
	hflip := entry&0x0800 != 0
	vflip := entry&0x1000 != 0
	priority := entry&0x8000 != 0

	px := int(sx % 8)
	py := int(sy % 8)
	if hflip {
		px = 7 - px
	}
	if vflip {
		py = 7 - py
	}

	idx := v.patternPixel(pattern, px, py)
	if idx == 0 {
		return samplePixel{}, priority
	}
	colour := v.colourCache[palette*16+int(idx)]
	return samplePixel{colour: colour, opaque: true}, priority
}

// patternPixel reads one 4-bit index out of an 8x8 pattern (4 bytes/row,
// two pixels packed per byte).
func (v *VDP) patternPixel(pattern uint16, px, py int) byte {
	addr := pattern*32 + uint16(py)*4 + uint16(px/2)
	b := v.vram[addr]
	if px%2 == 0 {
		return b >> 4
	}
	return b & 0xF
}

// sampleSprite finds the topmost opaque sprite pixel at (x, y), reporting
// its priority bit and whether more than one sprite covers the pixel
// (sprite collision).
func (v *VDP) sampleSprite(x, y int) (samplePixel, bool, bool) {
	hits := 0
	var found samplePixel
	var foundPrio bool
	for _, s := range v.spriteCache {
		w := s.width * 8
		h := s.height * 8
		if x < s.x || x >= s.x+w || y < s.y || y >= s.y+h {
			continue
		}
		lx := x - s.x
		ly := y - s.y
		if s.hflip {
			lx = w - 1 - lx
		}
		if s.vflip {
			ly = h - 1 - ly
		}
		cellCol := lx / 8
		cellRow := ly / 8
		cellIndex := s.pattern + uint16(cellCol*s.height+cellRow)
		idx := v.patternPixel(cellIndex, lx%8, ly%8)
		if idx == 0 {
			continue
		}
		hits++
		if hits == 1 {
			found = samplePixel{colour: v.colourCache[s.palette*16+int(idx)], opaque: true}
			foundPrio = s.priority
		}
		if hits > 1 {
			break
		}
	}
	if len(v.spriteCache) > 80 {
		v.sovr = true
	}
	return found, foundPrio, hits > 1
}
