// Package campaign measures how decoders react to damaged input.
//
// A campaign encodes a payload once, then for each trial deletes or mutates
// a random region of the encoded document and decodes the result. Every
// trial lands in one of four outcomes: the decoder rejected the damage,
// silently returned wrong bytes, returned the original payload, or panicked.
//
//	cfg := campaign.DefaultConfig()
//	cfg.Codec = "gzip"
//	cfg.Mode = campaign.ModeMutate
//	sum, err := campaign.Run(ctx, cfg, payload)
//	fmt.Println(sum)
//
// Configurations can be loaded from YAML:
//
//	codec: lz4
//	mode: delete
//	trials: 500
//	seed: 7
//	min_size: 0.001
//	max_size: 0.05
//	concurrency: 4
package campaign
