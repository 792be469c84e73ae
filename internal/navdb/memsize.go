// internal/navdb/memsize.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"reflect"
	"unsafe"
)

// deepSizeOf estimates the total heap footprint of obj, following
// pointers/slices/maps, for the diagnostic "nav database loaded" log line
// in Load. It doesn't need to be exact -- just good enough to flag when
// someone points -db at a snapshot an order of magnitude bigger than
// expected.
func deepSizeOf(obj any) int64 {
	if obj == nil {
		return 0
	}
	return sizeOfValue(reflect.ValueOf(obj), make(map[uintptr]bool))
}

func sizeOfValue(v reflect.Value, visited map[uintptr]bool) int64 {
	if !v.IsValid() {
		return 0
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Map || v.Kind() == reflect.Slice {
		if !v.IsNil() {
			ptr := v.Pointer()
			if visited[ptr] {
				return int64(v.Type().Size())
			}
			visited[ptr] = true
		}
	}

	t := v.Type()
	totalSize := int64(t.Size())

	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			totalSize += sizeOfValue(v.Elem(), visited)
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.Kind() == reflect.Ptr || field.Kind() == reflect.Slice || field.Kind() == reflect.Map {
				totalSize += sizeOfValue(field, visited) - int64(field.Type().Size())
			}
		}

	case reflect.Slice:
		if !v.IsNil() {
			elemSize := int64(t.Elem().Size())
			totalSize += int64(v.Len()) * elemSize
			if k := t.Elem().Kind(); k == reflect.Ptr || k == reflect.Struct || k == reflect.Slice || k == reflect.Map {
				for i := 0; i < v.Len(); i++ {
					totalSize += sizeOfValue(v.Index(i), visited) - elemSize
				}
			}
		}

	case reflect.Map:
		if !v.IsNil() {
			totalSize += int64(unsafe.Sizeof(struct {
				count      int
				flags      uint8
				b          uint8
				noverflow  uint16
				hash0      uint32
				buckets    unsafe.Pointer
				oldbuckets unsafe.Pointer
				nevacuate  uintptr
				extra      unsafe.Pointer
			}{}))
			iter := v.MapRange()
			for iter.Next() {
				totalSize += sizeOfValue(iter.Key(), visited)
				totalSize += sizeOfValue(iter.Value(), visited)
			}
		}

	case reflect.String:
		totalSize += int64(v.Len())

	case reflect.Interface:
		if !v.IsNil() {
			totalSize += sizeOfValue(v.Elem(), visited)
		}
	}

	return totalSize
}
