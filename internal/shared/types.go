package shared

import (
	"bytes"
	"encoding/json"
)

// Task types (asynq)
const (
	TypeDeleteAdImage       = "ad:delete_image"
	TypeSweepOrphanAdImages = "ad:sweep_orphan_images"
)

// Queues
const (
	QueueAd      = "ad"
	QueueDefault = "default"
)

// DeleteAdImagePayload: Key và/hoặc Prefix cần xóa khỏi object storage
type DeleteAdImagePayload struct {
	AdID   int64  `json:"ad_id"`
	Key    string `json:"key,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

type SweepOrphanImagesPayload struct {
	Prefix string `json:"prefix"`
}

// Optional ghi nhận field có xuất hiện trong JSON body hay không.
//
//	{}              -> Set=false
//	{"x": null}     -> Set=true, Null=true
//	{"x": false}    -> Set=true, Value=false
//
// Dùng cho PATCH: chỉ field có Set mới được ghi xuống DB.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some builds a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON chỉ được gọi khi key có mặt trong object
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports a set, non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
