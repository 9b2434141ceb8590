// Package cart はセッションに保存するカートの値オブジェクト。
// セッション上は "<productID>-<sizeID>" / "<productID>-" をキーにした map[string]int で持つ。
package cart

import (
	"sort"
	"strconv"
	"strings"
)

// LineKey はカート行のキー。SizeIDが0ならサイズなし。
type LineKey struct {
	ProductID int64
	SizeID    int64
}

func NewLineKey(productID int64, sizeID *int64) LineKey {
	k := LineKey{ProductID: productID}
	if sizeID != nil {
		k.SizeID = *sizeID
	}
	return k
}

func (k LineKey) HasSize() bool { return k.SizeID > 0 }

// SizePtr はサイズなしならnil。
func (k LineKey) SizePtr() *int64 {
	if !k.HasSize() {
		return nil
	}
	id := k.SizeID
	return &id
}

// String はセッション保存用のキー
func (k LineKey) String() string {
	if !k.HasSize() {
		return strconv.FormatInt(k.ProductID, 10) + "-"
	}
	return strconv.FormatInt(k.ProductID, 10) + "-" + strconv.FormatInt(k.SizeID, 10)
}

// ParseKey はセッションのキーを読む。壊れたキーはfalse。
func ParseKey(s string) (LineKey, bool) {
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return LineKey{}, false
	}

	pid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || pid <= 0 {
		return LineKey{}, false
	}

	k := LineKey{ProductID: pid}
	if len(parts) == 2 && parts[1] != "" {
		sid, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || sid <= 0 {
			return LineKey{}, false
		}
		k.SizeID = sid
	}
	return k, true
}

// Line はカートの1行
type Line struct {
	Key LineKey
	Qty int
}

// Cart は (商品, サイズ) -> 数量。数量は常に正。
type Cart struct {
	lines map[LineKey]int
}

func New() *Cart {
	return &Cart{lines: map[LineKey]int{}}
}

// Decode はセッションの生データからカートを作る。
// 壊れたキーと数量<=0の行は読み飛ばし、その件数を返す。
func Decode(raw map[string]int) (*Cart, int) {
	c := New()
	skipped := 0
	for s, qty := range raw {
		k, ok := ParseKey(s)
		if !ok || qty <= 0 {
			skipped++
			continue
		}
		c.lines[k] += qty
	}
	return c, skipped
}

// Encode はセッション保存用のmapを返す。
func (c *Cart) Encode() map[string]int {
	out := make(map[string]int, len(c.lines))
	for k, qty := range c.lines {
		out[k.String()] = qty
	}
	return out
}

func (c *Cart) Qty(k LineKey) int {
	return c.lines[k]
}

// Adjust は数量にdeltaを足す。0以下になれば行を消す。
// 行が無いときに0以下を足しても何もしない。
func (c *Cart) Adjust(k LineKey, delta int) int {
	next := c.lines[k] + delta
	if next <= 0 {
		delete(c.lines, k)
		return 0
	}
	c.lines[k] = next
	return next
}

// Remove は行を消す。無ければfalse。
func (c *Cart) Remove(k LineKey) bool {
	if _, ok := c.lines[k]; !ok {
		return false
	}
	delete(c.lines, k)
	return true
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Lines は (商品ID, サイズID) 順に並べて返す。
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for k, qty := range c.lines {
		out = append(out, Line{Key: k, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.ProductID != out[j].Key.ProductID {
			return out[i].Key.ProductID < out[j].Key.ProductID
		}
		return out[i].Key.SizeID < out[j].Key.SizeID
	})
	return out
}

// ProductIDs は重複なしの商品ID一覧
func (c *Cart) ProductIDs() []int64 {
	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(c.lines))
	for _, l := range c.Lines() {
		if _, ok := seen[l.Key.ProductID]; ok {
			continue
		}
		seen[l.Key.ProductID] = struct{}{}
		ids = append(ids, l.Key.ProductID)
	}
	return ids
}
