// Command datafile demonstrates writing a schema-typed value sequence to an
// Avro object container file and reading it back, using the deflate block
// codec.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/blockleaf/avro"
	"github.com/blockleaf/avro/avroval"
)

const userSchema = `{
	"type": "record",
	"name": "User",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "handle", "type": "string"},
		{"name": "bio", "type": ["null", "string"], "default": null}
	]
}`

func main() {
	s, err := avro.Parse(userSchema)
	if err != nil {
		log.Fatalf("parse schema: %v", err)
	}
	fmt.Printf("writer schema fingerprint: %x\n", avro.Fingerprint(s))

	var buf bytes.Buffer
	writer, err := avro.NewWriter(s, &buf, avro.WithCodec("deflate"))
	if err != nil {
		log.Fatalf("new writer: %v", err)
	}

	users := []avroval.Value{
		avroval.Record([]avroval.RecordField{
			{Name: "id", Value: avroval.Long(1)},
			{Name: "handle", Value: avroval.String("ada")},
			{Name: "bio", Value: avroval.Union(0, avroval.Null())},
		}),
		avroval.Record([]avroval.RecordField{
			{Name: "id", Value: avroval.Long(2)},
			{Name: "handle", Value: avroval.String("grace")},
			{Name: "bio", Value: avroval.Union(1, avroval.String("compiler pioneer"))},
		}),
	}
	for _, u := range users {
		if err := writer.Write(u); err != nil {
			log.Fatalf("write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}

	reader, err := avro.NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		log.Fatalf("new reader: %v", err)
	}
	for {
		v, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("next: %v", err)
		}
		id, _ := v.FieldByName("id")
		handle, _ := v.FieldByName("handle")
		fmt.Printf("user %d: %s\n", id.Int64(), handle.String())
	}
}
