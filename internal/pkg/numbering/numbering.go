// Package numbering は注文番号・SKU を採番する。
package numbering

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

const alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator は乱数源を差し替えられる採番器（テスト用）
type Generator struct {
	Rand io.Reader
}

func New() *Generator {
	return &Generator{Rand: rand.Reader}
}

// OrderNumber は ORD-<タイムスタンプ下8桁>-<英数字4桁> を返す。
// 一意性は DB の unique index で担保する。
func (g *Generator) OrderNumber(now time.Time) (string, error) {
	suffix, err := g.randomString(4)
	if err != nil {
		return "", err
	}
	ts := now.UnixMilli() % 100000000
	return fmt.Sprintf("ORD-%08d-%s", ts, suffix), nil
}

// SKU は LP-<ブランド3文字>-<6桁> を返す。
func (g *Generator) SKU(brand string, now time.Time) (string, error) {
	prefix := brandPrefix(brand)
	n, err := rand.Int(g.Rand, big.NewInt(1000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LP-%s-%03d%03d", prefix, now.Unix()%1000, n.Int64()), nil
}

func (g *Generator) randomString(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(alnum)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(g.Rand, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alnum[idx.Int64()])
	}
	return b.String(), nil
}

func brandPrefix(brand string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(brand) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}
