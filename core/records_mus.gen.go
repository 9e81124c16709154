// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	map3J9HXpo6Aqcxc8PN6aMe0gΞΞ   = ord.NewMapSer[string, string](ord.String, ord.String)
	sliceLYdZfjNbNTX2rtKW3U7YUQΞΞ = ord.NewSliceSer[float32](varint.Float32)
	sliceUKWUtAuloxbRCYu7RZqFbwΞΞ = ord.NewSliceSer[string](ord.String)
)

var DocumentStatusMUS = documentStatusMUS{}

type documentStatusMUS struct{}

func (s documentStatusMUS) Marshal(v DocumentStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s documentStatusMUS) Unmarshal(bs []byte) (v DocumentStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = DocumentStatus(tmp)
	return
}

func (s documentStatusMUS) Size(v DocumentStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s documentStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.FileType, bs[n:])
	n += DocumentStatusMUS.Marshal(v.Status, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.UploadedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
	n += varint.Int64.Marshal(v.SizeBytes, bs[n:])
	n += varint.Int.Marshal(v.CharCount, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += ord.Bool.Marshal(v.PIIDetected, bs[n:])
	n += ord.String.Marshal(v.PIISummary, bs[n:])
	n += IDMUS.Marshal(v.Checksum, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += sliceUKWUtAuloxbRCYu7RZqFbwΞΞ.Marshal(v.Keywords, bs[n:])
	return n + ord.String.Marshal(v.UserId, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FileType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = DocumentStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UploadedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SizeBytes, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CharCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PIIDetected, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PIISummary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Checksum, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Keywords, n1, err = sliceUKWUtAuloxbRCYu7RZqFbwΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Filename)
	size += ord.String.Size(v.FileType)
	size += DocumentStatusMUS.Size(v.Status)
	size += raw.TimeUnixMicro.Size(v.UploadedAt)
	size += raw.TimeUnixMicro.Size(v.UpdatedAt)
	size += varint.Int64.Size(v.SizeBytes)
	size += varint.Int.Size(v.CharCount)
	size += varint.Int.Size(v.ChunkCount)
	size += ord.Bool.Size(v.PIIDetected)
	size += ord.String.Size(v.PIISummary)
	size += IDMUS.Size(v.Checksum)
	size += ord.String.Size(v.Summary)
	size += sliceUKWUtAuloxbRCYu7RZqFbwΞΞ.Size(v.Keywords)
	return size + ord.String.Size(v.UserId)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocumentStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceUKWUtAuloxbRCYu7RZqFbwΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.DocumentId, bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += sliceLYdZfjNbNTX2rtKW3U7YUQΞΞ.Marshal(v.Vector, bs[n:])
	n += ord.Bool.Marshal(v.PIIMasked, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocumentId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Seq, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = sliceLYdZfjNbNTX2rtKW3U7YUQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PIIMasked, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.DocumentId)
	size += varint.Int.Size(v.Seq)
	size += ord.String.Size(v.Text)
	size += sliceLYdZfjNbNTX2rtKW3U7YUQΞΞ.Size(v.Vector)
	size += ord.Bool.Size(v.PIIMasked)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceLYdZfjNbNTX2rtKW3U7YUQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var AuditEntryMUS = auditEntryMUS{}

type auditEntryMUS struct{}

func (s auditEntryMUS) Marshal(v AuditEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += raw.TimeUnixMicro.Marshal(v.Timestamp, bs[n:])
	n += ord.String.Marshal(v.UserId, bs[n:])
	n += ord.String.Marshal(v.Action, bs[n:])
	n += ord.String.Marshal(v.Details, bs[n:])
	n += ord.String.Marshal(v.IPAddress, bs[n:])
	return n + map3J9HXpo6Aqcxc8PN6aMe0gΞΞ.Marshal(v.Metadata, bs[n:])
}

func (s auditEntryMUS) Unmarshal(bs []byte) (v AuditEntry, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Action, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Details, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IPAddress, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = map3J9HXpo6Aqcxc8PN6aMe0gΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s auditEntryMUS) Size(v AuditEntry) (size int) {
	size = IDMUS.Size(v.Id)
	size += raw.TimeUnixMicro.Size(v.Timestamp)
	size += ord.String.Size(v.UserId)
	size += ord.String.Size(v.Action)
	size += ord.String.Size(v.Details)
	size += ord.String.Size(v.IPAddress)
	return size + map3J9HXpo6Aqcxc8PN6aMe0gΞΞ.Size(v.Metadata)
}

func (s auditEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = map3J9HXpo6Aqcxc8PN6aMe0gΞΞ.Skip(bs[n:])
	n += n1
	return
}
