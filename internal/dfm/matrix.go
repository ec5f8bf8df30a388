//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package dfm

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/tok"
	"github.com/e-gun/sparse"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

//
// DOCUMENT-FEATURE MATRIX
//

// Matrix - documents x features counts; rows follow corpus order; columns follow first appearance
type Matrix struct {
	docs   []string
	feats  []string
	index  map[string]int
	vars   *corp.Docvars
	counts *sparse.CSR // nil when either dimension is 0
}

// Cell - one non-zero entry
type Cell struct {
	Doc  int
	Feat int
	N    float64
}

// Build - stem every content token, drop the gaps, count
func Build(tk *tok.Tokens, st Stemmer) (*Matrix, error) {
	if st == nil {
		st = identity{}
	}

	var feats []string
	index := make(map[string]int)
	var cells []Cell

	for d := 0; d < tk.NDocs(); d++ {
		row := make(map[int]float64)
		var order []int
		for _, w := range tk.Doc(d).Content() {
			s := st.Stem(w)
			if s == "" {
				continue
			}
			j, ok := index[s]
			if !ok {
				j = len(feats)
				index[s] = j
				feats = append(feats, s)
			}
			if _, seen := row[j]; !seen {
				order = append(order, j)
			}
			row[j]++
		}
		for _, j := range order {
			cells = append(cells, Cell{Doc: d, Feat: j, N: row[j]})
		}
	}

	return FromCells(tk.Names(), feats, cells, tk.Docvars())
}

// FromCells - assemble a matrix from its parts; cells for the same position are summed
func FromCells(docs []string, feats []string, cells []Cell, vars *corp.Docvars) (*Matrix, error) {
	if vars == nil {
		vars = corp.EmptyDocvars(len(docs))
	}
	if vars.NRows() != len(docs) {
		return nil, &corp.CovariateAlignmentError{Docs: len(docs), Rows: vars.NRows()}
	}

	index := make(map[string]int, len(feats))
	for j, f := range feats {
		if _, dup := index[f]; dup {
			return nil, fmt.Errorf("dfm: duplicate feature '%s'", f)
		}
		index[f] = j
	}

	m := &Matrix{docs: slices.Clone(docs), feats: slices.Clone(feats), index: index, vars: vars}
	if len(docs) == 0 || len(feats) == 0 {
		return m, nil
	}

	sum := make(map[[2]int]float64, len(cells))
	for _, c := range cells {
		if c.Doc < 0 || c.Doc >= len(docs) || c.Feat < 0 || c.Feat >= len(feats) {
			return nil, fmt.Errorf("dfm: cell (%d, %d) outside %dx%d", c.Doc, c.Feat, len(docs), len(feats))
		}
		if c.N < 0 {
			return nil, fmt.Errorf("dfm: negative count at (%d, %d)", c.Doc, c.Feat)
		}
		sum[[2]int{c.Doc, c.Feat}] += c.N
	}

	summed := make([]Cell, 0, len(sum))
	for k, v := range sum {
		if v != 0 {
			summed = append(summed, Cell{Doc: k[0], Feat: k[1], N: v})
		}
	}
	sortcells(summed)
	indptr, ind, data := compress(len(docs), summed)
	m.counts = sparse.NewCSR(len(docs), len(feats), indptr, ind, data)
	return m, nil
}

// sortcells - row by row, columns ascending within a row
func sortcells(c []Cell) {
	slices.SortFunc(c, func(a, b Cell) int {
		if a.Doc != b.Doc {
			return a.Doc - b.Doc
		}
		return a.Feat - b.Feat
	})
}

// compress - pointer, index and value slices for sorted cells; the storage order never depends on map iteration
func compress(ndocs int, cells []Cell) ([]int, []int, []float64) {
	indptr := make([]int, ndocs+1)
	ind := make([]int, len(cells))
	data := make([]float64, len(cells))
	for k, c := range cells {
		indptr[c.Doc+1]++
		ind[k] = c.Feat
		data[k] = c.N
	}
	for i := 0; i < ndocs; i++ {
		indptr[i+1] += indptr[i]
	}
	return indptr, ind, data
}

func (m *Matrix) NDocs() int { return len(m.docs) }
func (m *Matrix) NFeatures() int { return len(m.feats) }
func (m *Matrix) Features() []string { return slices.Clone(m.feats) }
func (m *Matrix) DocNames() []string { return slices.Clone(m.docs) }
func (m *Matrix) Docvars() *corp.Docvars { return m.vars }

// FeatureIndex - column of a feature
func (m *Matrix) FeatureIndex(term string) (int, bool) {
	j, ok := m.index[term]
	return j, ok
}

// Count - one cell
func (m *Matrix) Count(i, j int) float64 {
	if m.counts == nil {
		return 0
	}
	return m.counts.At(i, j)
}

// Cells - every non-zero entry, row by row
func (m *Matrix) Cells() []Cell {
	var out []Cell
	m.each(func(i, j int, v float64) {
		out = append(out, Cell{Doc: i, Feat: j, N: v})
	})
	sortcells(out)
	return out
}

func (m *Matrix) each(fn func(i, j int, v float64)) {
	if m.counts == nil {
		return
	}
	m.counts.DoNonZero(fn)
}

// NNZ - number of non-zero cells
func (m *Matrix) NNZ() int {
	if m.counts == nil {
		return 0
	}
	return m.counts.NNZ()
}

// FeatureTotals - corpus-wide count of each feature
func (m *Matrix) FeatureTotals() []float64 {
	out := make([]float64, len(m.feats))
	m.each(func(i, j int, v float64) { out[j] += v })
	return out
}

// DocTotals - number of counted tokens in each document
func (m *Matrix) DocTotals() []float64 {
	out := make([]float64, len(m.docs))
	m.each(func(i, j int, v float64) { out[i] += v })
	return out
}

// DocFreq - number of documents in which each feature appears
func (m *Matrix) DocFreq() []int {
	out := make([]int, len(m.feats))
	m.each(func(i, j int, v float64) {
		if v > 0 {
			out[j]++
		}
	})
	return out
}

// Column - the counts of one feature across the documents
func (m *Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.docs))
	for i := range out {
		out[i] = m.Count(i, j)
	}
	return out
}

// Row - the counts of one document across the features
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, len(m.feats))
	if m.counts == nil {
		return out
	}
	m.counts.DoRowNonZero(i, func(_, j int, v float64) { out[j] = v })
	return out
}

// EmptyDocs - rows with no counts left (e.g., after trimming)
func (m *Matrix) EmptyDocs() []int {
	var out []int
	for i, t := range m.DocTotals() {
		if t == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Trim - drop the features whose corpus-wide count is below min; rows are never touched
func (m *Matrix) Trim(min float64) *Matrix {
	tot := m.FeatureTotals()
	var keep []int
	for j := range m.feats {
		if tot[j] >= min {
			keep = append(keep, j)
		}
	}
	return m.selectcols(keep)
}

// selectcols - a new matrix over the listed columns, in the listed order
func (m *Matrix) selectcols(keep []int) *Matrix {
	remap := make(map[int]int, len(keep))
	feats := make([]string, len(keep))
	for nj, j := range keep {
		remap[j] = nj
		feats[nj] = m.feats[j]
	}
	var cells []Cell
	m.each(func(i, j int, v float64) {
		if nj, ok := remap[j]; ok {
			cells = append(cells, Cell{Doc: i, Feat: nj, N: v})
		}
	})
	out, _ := FromCells(m.docs, feats, cells, m.vars) // inputs come from a valid matrix
	return out
}

// SubsetDocs - a new matrix over the listed rows; features and their order are kept even if a column goes empty
func (m *Matrix) SubsetDocs(idx []int) (*Matrix, error) {
	remap := make(map[int]int, len(idx))
	docs := make([]string, len(idx))
	for ni, i := range idx {
		if i < 0 || i >= len(m.docs) {
			return nil, fmt.Errorf("dfm: document %d out of range [0, %d)", i, len(m.docs))
		}
		if _, dup := remap[i]; dup {
			return nil, fmt.Errorf("dfm: document %d selected twice", i)
		}
		remap[i] = ni
		docs[ni] = m.docs[i]
	}
	vars, err := m.vars.Subset(idx)
	if err != nil {
		return nil, err
	}
	var cells []Cell
	m.each(func(i, j int, v float64) {
		if ni, ok := remap[i]; ok {
			cells = append(cells, Cell{Doc: ni, Feat: j, N: v})
		}
	})
	return FromCells(docs, m.feats, cells, vars)
}

// DropEmptyDocs - SubsetDocs() over every row that still has counts; also returns the kept row numbers
func (m *Matrix) DropEmptyDocs() (*Matrix, []int, error) {
	tot := m.DocTotals()
	var keep []int
	for i, t := range tot {
		if t > 0 {
			keep = append(keep, i)
		}
	}
	s, err := m.SubsetDocs(keep)
	return s, keep, err
}

// Dense - a gonum copy of the counts
func (m *Matrix) Dense() *mat.Dense {
	if len(m.docs) == 0 || len(m.feats) == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(len(m.docs), len(m.feats), nil)
	m.each(func(i, j int, v float64) { d.Set(i, j, v) })
	return d
}

// TermDocCSC - features x documents, the orientation the topic engine wants; each document column
// lists its features in ascending order so that a seeded fit sees the same input every time
func (m *Matrix) TermDocCSC() *sparse.CSC {
	if len(m.docs) == 0 || len(m.feats) == 0 {
		return nil
	}
	indptr, ind, data := compress(len(m.docs), m.Cells())
	return sparse.NewCSC(len(m.feats), len(m.docs), indptr, ind, data)
}
