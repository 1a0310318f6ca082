package loader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/specialistvlad/regioncache/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// HCLFile loads pairs from an HCL seed file (or a directory of them) made of
// entry blocks:
//
//	entry "1" {
//	  value = "Alice"
//	}
//
// Entries are emitted in file order. Keys are the block labels (always
// strings); values are converted from cty to plain Go values.
type HCLFile struct {
	Path string
}

// NewHCLFile returns a loader for the seed file at path.
func NewHCLFile(path string) *HCLFile {
	return &HCLFile{Path: path}
}

type seedFile struct {
	Entries []*seedEntry `hcl:"entry,block"`
	Remain  hcl.Body     `hcl:",remain"`
}

type seedEntry struct {
	Key   string    `hcl:"key,label"`
	Value cty.Value `hcl:"value"`
}

// FetchAll implements Loader. The file is re-read on every call. When Path
// is a directory, every .hcl file below it is read in lexical order and the
// entries are concatenated.
func (h *HCLFile) FetchAll(ctx context.Context) ([]Pair, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(h.Path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find HCL seed files in %s: %w", h.Path, err)
	}
	logger.Debug("Reading HCL seed files.", "path", h.Path, "files", len(files))

	parser := hclparse.NewParser()
	var pairs []Pair
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		filePairs, err := decodeSeed(file.Body, path)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, filePairs...)
	}
	if pairs == nil {
		pairs = []Pair{}
	}
	return pairs, nil
}

// ParseHCLSeed decodes seed entries from in-memory source.
func ParseHCLSeed(src []byte, filename string) ([]Pair, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeSeed(file.Body, filename)
}

func decodeSeed(body hcl.Body, filename string) ([]Pair, error) {
	var root seedFile
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	pairs := make([]Pair, 0, len(root.Entries))
	for _, e := range root.Entries {
		v, err := ctyToNative(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %q: %w", filename, e.Key, err)
		}
		pairs = append(pairs, Pair{Key: e.Key, Value: v})
	}
	return pairs, nil
}

// ctyToNative converts a known cty value into string, int64, float64, bool,
// []any or map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = nv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
