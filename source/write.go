package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/hupe1980/termcluster/blobstore"
	"github.com/hupe1980/termcluster/centroid"
)

// Write emits t as canonical CSV: clusters ascending, terms sorted within a
// cluster. Terms are written in their normalized form.
func Write(w io.Writer, t *centroid.Table) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	rec := make([]string, 3)
	for c := 0; c < t.K(); c++ {
		vec, err := t.Lookup(c)
		if err != nil {
			return err
		}
		terms := make([]string, 0, vec.Len())
		vec.Range(func(term string, _ float64) bool {
			terms = append(terms, term)
			return true
		})
		sort.Strings(terms)

		rec[0] = strconv.Itoa(c)
		for _, term := range terms {
			rec[1] = term
			rec[2] = strconv.FormatFloat(vec.Get(term), 'g', -1, 64)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// Encode renders t as CSV framed with c.
func Encode(t *centroid.Table, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return nil, err
	}
	return compress(buf.Bytes(), c)
}

// Publish encodes t with the compression implied by name and stores it.
func Publish(ctx context.Context, store blobstore.BlobStore, name string, t *centroid.Table) error {
	data, err := Encode(t, CompressionFor(name))
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}
