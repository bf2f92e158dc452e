package hashcode

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"sync"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/fxamacker/cbor/v2"
	"github.com/minio/simdjson-go"
)

// Record hashing reduces a whole JSON or CBOR record to one combined
// code: every scalar and every map key becomes a 32-bit input word,
// containers combine their contents through a nested accumulator, and
// the root code is combined once more at the top. Two renderings of
// the same record agree, because map keys are folded in sorted order
// and numbers are normalized before hashing (integral floats collapse
// to integers, unsigned values that fit collapse to signed).

// Scalar domain tags keep equal payloads of different kinds from
// colliding, e.g. the integer 1 and the boolean true.
const (
	tagBool  byte = 'b'
	tagInt   byte = 'i'
	tagFloat byte = 'f'
	tagBytes byte = 'x'
	tagMap   byte = 'm'
	tagArr   byte = 'a'
)

// CombineJSON parses data as JSON and returns the combined code of the
// whole record, mixed with the process seed.
func CombineJSON(data []byte) (int32, error) {
	return CombineJSONSeeded(data, processSeed())
}

// CombineJSONSeeded is CombineJSON with an explicit seed, for callers
// that need output to be reproducible across processes.
func CombineJSONSeeded(data []byte, seed uint32) (int32, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("json input is empty")
	}
	w := recordWalker{seed: seed}
	// simdjson only accepts object and array roots; scalar documents
	// go through encoding/json instead.
	if trimmed[0] != '{' && trimmed[0] != '[' {
		code, err := w.scalarRootCode(trimmed)
		if err != nil {
			return 0, err
		}
		return w.top(code), nil
	}
	parsed, err := simdjson.Parse(data, nil)
	if err != nil {
		return 0, fmt.Errorf("parse json: %w", err)
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return 0, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return 0, err
	}
	code, err := w.codeFromJSONIter(typ, root)
	if err != nil {
		return 0, err
	}
	return w.top(code), nil
}

// scalarRootCode reduces a bare scalar document (null, bool, number or
// string at the top level) to its input code.
func (w *recordWalker) scalarRootCode(data []byte) (uint32, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); err == nil || err != io.EOF {
		return 0, fmt.Errorf("invalid character after top-level value")
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case bool:
		return boolCode(val, w.seed), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return intCode(i, w.seed), nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid json number: %s", val)
		}
		return numberCode(f, w.seed), nil
	case string:
		return stringKey(val, w.seed), nil
	default:
		return 0, fmt.Errorf("unsupported scalar json type %T", v)
	}
}

// CombineCBOR decodes data as a single CBOR item and returns the
// combined code of the whole record, mixed with the process seed. A
// record encoded as CBOR combines to the same code as its JSON
// rendering.
func CombineCBOR(data []byte) (int32, error) {
	return CombineCBORSeeded(data, processSeed())
}

// CombineCBORSeeded is CombineCBOR with an explicit seed.
func CombineCBORSeeded(data []byte, seed uint32) (int32, error) {
	var v any
	if err := cborDecMode().Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode cbor: %w", err)
	}
	w := recordWalker{seed: seed}
	code, err := w.codeFromAny(v)
	if err != nil {
		return 0, err
	}
	return w.top(code), nil
}

var cborDecMode = sync.OnceValue(func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any{}),
	}.DecMode()
	if err != nil {
		panic("hashcode: cbor decode mode: " + err.Error())
	}
	return dm
})

type recordWalker struct {
	seed uint32
}

// top combines the root code once more, so a bare scalar record still
// goes through the full mix.
func (w *recordWalker) top(code uint32) int32 {
	h := Hash{seed: w.seed, seeded: true}
	h.AddUint32(code)
	return h.Sum()
}

func (w *recordWalker) codeFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (uint32, error) {
	switch typ {
	case simdjson.TypeNull:
		return 0, nil
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return 0, err
		}
		return boolCode(v, w.seed), nil
	case simdjson.TypeInt:
		v, err := it.Int()
		if err != nil {
			return 0, err
		}
		return intCode(v, w.seed), nil
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return floatCode(float64(v), w.seed), nil
		}
		return intCode(int64(v), w.seed), nil
	case simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return 0, err
		}
		return numberCode(v, w.seed), nil
	case simdjson.TypeString:
		b, err := it.StringBytes()
		if err != nil {
			return 0, err
		}
		return stringKey(string(b), w.seed), nil
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return 0, err
		}
		entries := getFieldEntries()
		defer func() { putFieldEntries(entries) }()
		var walkErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if walkErr != nil {
				return
			}
			code, err := w.codeFromJSONIter(elem.Type(), &elem)
			if err != nil {
				walkErr = err
				return
			}
			entries = append(entries, fieldEntry{key: string(key), code: code})
		}, nil)
		if err != nil {
			return 0, err
		}
		if walkErr != nil {
			return 0, walkErr
		}
		return w.mapCode(entries), nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return 0, err
		}
		h := Hash{seed: w.seed, seeded: true}
		h.AddUint32(uint32(tagArr))
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			code, err := w.codeFromJSONIter(t, &elem)
			if err != nil {
				return 0, err
			}
			h.AddUint32(code)
		}
		return uint32(h.Sum()), nil
	default:
		return 0, fmt.Errorf("unsupported json type: %v", typ)
	}
}

func (w *recordWalker) codeFromAny(v any) (uint32, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case bool:
		return boolCode(val, w.seed), nil
	case int64:
		return intCode(val, w.seed), nil
	case uint64:
		if val > math.MaxInt64 {
			return floatCode(float64(val), w.seed), nil
		}
		return intCode(int64(val), w.seed), nil
	case float64:
		return numberCode(val, w.seed), nil
	case string:
		return stringKey(val, w.seed), nil
	case []byte:
		return bytesCode(val, w.seed), nil
	case []any:
		h := Hash{seed: w.seed, seeded: true}
		h.AddUint32(uint32(tagArr))
		for _, elem := range val {
			code, err := w.codeFromAny(elem)
			if err != nil {
				return 0, err
			}
			h.AddUint32(code)
		}
		return uint32(h.Sum()), nil
	case map[string]any:
		entries := getFieldEntries()
		defer func() { putFieldEntries(entries) }()
		for key, elem := range val {
			code, err := w.codeFromAny(elem)
			if err != nil {
				return 0, err
			}
			entries = append(entries, fieldEntry{key: key, code: code})
		}
		return w.mapCode(entries), nil
	default:
		return 0, fmt.Errorf("unsupported record value type %T", v)
	}
}

// mapCode folds key/value code pairs in sorted key order, so document
// order and map iteration order never leak into the result.
func (w *recordWalker) mapCode(entries []fieldEntry) uint32 {
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	h := Hash{seed: w.seed, seeded: true}
	h.AddUint32(uint32(tagMap))
	for _, e := range entries {
		h.AddUint32(stringKey(e.key, w.seed))
		h.AddUint32(e.code)
	}
	return uint32(h.Sum())
}

// numberCode normalizes integral floats onto the integer path, so 1
// and 1.0 agree regardless of which decoder produced them.
func numberCode(v float64, seed uint32) uint32 {
	if v >= math.MinInt64 && v <= math.MaxInt64 && math.Trunc(v) == v {
		return intCode(int64(v), seed)
	}
	return floatCode(v, seed)
}

func boolCode(v bool, seed uint32) uint32 {
	var tmp [2]byte
	tmp[0] = tagBool
	if v {
		tmp[1] = 1
	}
	return XXH32(tmp[:], seed)
}

func intCode(v int64, seed uint32) uint32 {
	var tmp [9]byte
	tmp[0] = tagInt
	binary.LittleEndian.PutUint64(tmp[1:], uint64(v))
	return XXH32(tmp[:], seed)
}

func floatCode(v float64, seed uint32) uint32 {
	var tmp [9]byte
	tmp[0] = tagFloat
	binary.LittleEndian.PutUint64(tmp[1:], math.Float64bits(v))
	return XXH32(tmp[:], seed)
}

func bytesCode(v []byte, seed uint32) uint32 {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_ = buf.WriteByte(tagBytes)
	_, _ = buf.Write(v)
	return XXH32(buf.Bytes(), seed)
}
