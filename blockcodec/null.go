package blockcodec

type nullCodec struct{}

func (nullCodec) Name() string { return "null" }

func (nullCodec) Compress(block []byte) ([]byte, error) { return block, nil }

func (nullCodec) Decompress(compressed []byte) ([]byte, error) { return compressed, nil }
