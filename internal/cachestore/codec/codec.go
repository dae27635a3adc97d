// Package codec implements the cache substrate's tagged-byte value encoding:
// a one-byte method prefix (j=JSON, m=msgpack, p=generic-object fallback),
// a two-byte compressed variant (c + method byte) applied only when it pays
// for itself, and a fallback decode chain for legacy untagged payloads.
// Grounded on core/cache/serialization.py's OptimizedSerializer.
package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Method is the one-byte serialization tag.
type Method byte

const (
	MethodJSON    Method = 'j'
	MethodMsgpack Method = 'm'
	MethodPickle  Method = 'p' // generic-object fallback; see note on Encode
	methodCompressed Method = 'c'
)

// compressionThreshold mirrors COMPRESSION_THRESHOLD = 1024 bytes.
const compressionThreshold = 1024

// minSavingsRatio mirrors the "at least 10% savings" rule: compressed size
// must be < originalSize*0.9.
const minSavingsRatio = 0.9

// Encode serializes v choosing a method by its Go type (mirroring
// METHOD_PREFERENCES: scalars→JSON, maps/slices→msgpack), then compresses
// the result with gzip when it is large enough and compression pays off.
//
// Go has no pickle equivalent; MethodPickle is retained only as the decode
// side of the legacy fallback chain (Decode), never chosen by Encode.
func Encode(v any) ([]byte, error) {
	method := chooseMethod(v)

	var serialized []byte
	var err error
	switch method {
	case MethodMsgpack:
		serialized, err = msgpack.Marshal(v)
	default:
		serialized, err = json.Marshal(v)
		method = MethodJSON
	}
	if err != nil {
		return nil, err
	}

	if len(serialized) >= compressionThreshold {
		compressed, cErr := gzipCompress(serialized)
		if cErr == nil && float64(len(compressed)) < float64(len(serialized))*minSavingsRatio {
			out := make([]byte, 0, len(compressed)+2)
			out = append(out, byte(methodCompressed), byte(method))
			out = append(out, compressed...)
			return out, nil
		}
	}

	out := make([]byte, 0, len(serialized)+1)
	out = append(out, byte(method))
	out = append(out, serialized...)
	return out, nil
}

func chooseMethod(v any) Method {
	switch v.(type) {
	case string, int, int64, float64, bool, nil:
		return MethodJSON
	default:
		return MethodMsgpack
	}
}

// Decode reverses Encode into out (a pointer), falling back through
// JSON→generic-map→raw-text for untagged legacy payloads, and returning
// (false, nil) rather than an error for corrupt data — the cache's
// absent-on-corruption contract.
func Decode(data []byte, out any) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}

	first := Method(data[0])
	if first != MethodJSON && first != MethodMsgpack && first != MethodPickle && first != methodCompressed {
		return decodeLegacy(data, out)
	}

	payload := data[1:]
	method := first
	if first == methodCompressed {
		if len(data) < 2 {
			return decodeLegacy(data, out)
		}
		method = Method(data[1])
		raw, err := gzipDecompress(data[2:])
		if err != nil {
			return decodeLegacy(data, out)
		}
		payload = raw
	}

	switch method {
	case MethodJSON:
		if err := json.Unmarshal(payload, out); err != nil {
			return false, nil
		}
		return true, nil
	case MethodMsgpack:
		if err := msgpack.Unmarshal(payload, out); err != nil {
			return false, nil
		}
		return true, nil
	default:
		return decodeLegacy(data, out)
	}
}

func decodeLegacy(data []byte, out any) (bool, error) {
	if err := json.Unmarshal(data, out); err == nil {
		return true, nil
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return true, nil
	}
	if s, ok := out.(*any); ok {
		*s = string(data)
		return true, nil
	}
	return false, nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
