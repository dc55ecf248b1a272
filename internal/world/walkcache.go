package world

// The perception cache covers a fixed box around the creature.
const (
	maxWalkCacheWidth  = 11
	maxWalkCacheHeight = 11
	cacheWidth         = maxWalkCacheWidth*2 + 1
	cacheHeight        = maxWalkCacheHeight*2 + 1
)

// useCacheMap reports whether this creature kind maintains a perception
// cache. Only monsters path frequently enough to amortize the upkeep.
func (c *Creature) useCacheMap() bool {
	return c.Kind == KindMonster
}

// rebuildMapCache recomputes the whole grid. Required on first placement,
// teleport, and floor change.
func (c *Creature) rebuildMapCache() {
	for y := int32(-maxWalkCacheHeight); y <= maxWalkCacheHeight; y++ {
		for x := int32(-maxWalkCacheWidth); x <= maxWalkCacheWidth; x++ {
			pos := Position{X: c.Pos.X + x, Y: c.Pos.Y + y, Z: c.Pos.Z}
			c.updateTileCacheAt(pos, x, y)
		}
	}
}

func (c *Creature) updateTileCacheAt(pos Position, dx, dy int32) {
	if abs32(dx) <= maxWalkCacheWidth && abs32(dy) <= maxWalkCacheHeight {
		c.localMapCache[maxWalkCacheHeight+dy][maxWalkCacheWidth+dx] = c.ws.walkableFor(c, pos)
	}
}

// updateTileCache refreshes the single cell at pos if it lies inside the
// cached box on the creature's floor.
func (c *Creature) updateTileCache(pos Position) {
	if pos.Z == c.Pos.Z {
		c.updateTileCacheAt(pos, pos.OffsetX(c.Pos), pos.OffsetY(c.Pos))
	}
}

// WalkCache answers a pathfinder probe: 0 = blocked, 1 = walkable,
// 2 = unknown (outside the cache, or caching disabled — the caller should
// query the map and treat the tile as costlier).
func (c *Creature) WalkCache(pos Position) int32 {
	if !c.useCacheMap() {
		return 2
	}

	if c.Pos.Z != pos.Z {
		return 0
	}

	if pos == c.Pos {
		return 1
	}

	dx := pos.OffsetX(c.Pos)
	if abs32(dx) <= maxWalkCacheWidth {
		dy := pos.OffsetY(c.Pos)
		if abs32(dy) <= maxWalkCacheHeight {
			if c.localMapCache[maxWalkCacheHeight+dy][maxWalkCacheWidth+dx] {
				return 1
			}
			return 0
		}
	}

	// out of range
	return 2
}

// OnTileChanged is the tile-mutation notification: something on pos
// changed walkability. Only the affected cell is refreshed.
func (c *Creature) OnTileChanged(pos Position) {
	if c.cacheLoaded {
		c.updateTileCache(pos)
	}
}

// shiftMapCache slides the cached grid after a same-floor step from
// oldPos to the creature's current position, re-querying only the exposed
// border instead of rebuilding.
func (c *Creature) shiftMapCache(oldPos Position) {
	myPos := c.Pos

	if oldPos.Y > myPos.Y { // north
		// shift rows south
		for y := cacheHeight - 1; y >= 1; y-- {
			c.localMapCache[y] = c.localMapCache[y-1]
		}
		for x := int32(-maxWalkCacheWidth); x <= maxWalkCacheWidth; x++ {
			pos := Position{X: myPos.X + x, Y: myPos.Y - maxWalkCacheHeight, Z: myPos.Z}
			c.updateTileCacheAt(pos, x, -maxWalkCacheHeight)
		}
	} else if oldPos.Y < myPos.Y { // south
		// shift rows north
		for y := 0; y <= cacheHeight-2; y++ {
			c.localMapCache[y] = c.localMapCache[y+1]
		}
		for x := int32(-maxWalkCacheWidth); x <= maxWalkCacheWidth; x++ {
			pos := Position{X: myPos.X + x, Y: myPos.Y + maxWalkCacheHeight, Z: myPos.Z}
			c.updateTileCacheAt(pos, x, maxWalkCacheHeight)
		}
	}

	if oldPos.X < myPos.X { // east
		// shift columns west
		startY, endY := 0, cacheHeight-1
		dy := oldPos.Y - myPos.Y
		if dy < 0 {
			endY += int(dy)
		} else if dy > 0 {
			startY = int(dy)
		}
		for y := startY; y <= endY; y++ {
			for x := 0; x <= cacheWidth-2; x++ {
				c.localMapCache[y][x] = c.localMapCache[y][x+1]
			}
		}
		for y := int32(-maxWalkCacheHeight); y <= maxWalkCacheHeight; y++ {
			pos := Position{X: myPos.X + maxWalkCacheWidth, Y: myPos.Y + y, Z: myPos.Z}
			c.updateTileCacheAt(pos, maxWalkCacheWidth, y)
		}
	} else if oldPos.X > myPos.X { // west
		// shift columns east
		startY, endY := 0, cacheHeight-1
		dy := oldPos.Y - myPos.Y
		if dy < 0 {
			endY += int(dy)
		} else if dy > 0 {
			startY = int(dy)
		}
		for y := startY; y <= endY; y++ {
			for x := cacheWidth - 1; x >= 1; x-- {
				c.localMapCache[y][x] = c.localMapCache[y][x-1]
			}
		}
		for y := int32(-maxWalkCacheHeight); y <= maxWalkCacheHeight; y++ {
			pos := Position{X: myPos.X - maxWalkCacheWidth, Y: myPos.Y + y, Z: myPos.Z}
			c.updateTileCacheAt(pos, -maxWalkCacheWidth, y)
		}
	}

	// the vacated tile may have regained walkability
	c.updateTileCache(oldPos)
}
