package dataset

import "github.com/jpbench/jpbench/internal/checksum"

// Dataset ids of the built-in corpus.
const (
	AST            = "ast"
	Crossref0      = "crossref0"
	Crossref1      = "crossref1"
	Crossref2      = "crossref2"
	Crossref4      = "crossref4"
	Openfood       = "openfood"
	Twitter        = "twitter"
	PisonBestbuy   = "pison_bestbuy"
	PisonGoogleMap = "pison_google_map"
	PisonNSPL      = "pison_nspl"
	PisonTwitter   = "pison_twitter"
	PisonWalmart   = "pison_walmart"
	PisonWiki      = "pison_wiki"
)

var crossrefArchive = Archive{
	URL:      "https://zenodo.org/record/7343312/files/crossref.tar.gz",
	Checksum: checksum.MustParseDigest("eddb87d1cf7490974236c3ba68a0e4237189aec4b9c27befd020d6e24d45c1db"),
}

// Catalog returns the descriptors of the built-in corpus.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:     AST,
			Path:     "ast/ast.json",
			Source:   JSONSource("https://zenodo.org/record/7229269/files/ast.json"),
			Checksum: checksum.MustParseDigest("c3ff840d153953ee08c1d9622b20f8c1dc367ae2abcb9c85d44100c6209571af"),
		},
		{
			Name:     Crossref0,
			Path:     "crossref/crossref0.json",
			Source:   TarGzSource(crossrefArchive, ""),
			Checksum: checksum.MustParseDigest("db314fb19b527d5aa4e0e7d2b05c45d183af0f0aed8af285ce20c044e9789943"),
		},
		{
			Name:     Crossref1,
			Path:     "crossref/crossref1.json",
			Source:   TarGzSource(crossrefArchive, ""),
			Checksum: checksum.MustParseDigest("723527cbf9b642cb7cb63cd877496f72115a76a36b4c86814f2776d6950fcc48"),
		},
		{
			Name:     Crossref2,
			Path:     "crossref/crossref2.json",
			Source:   TarGzSource(crossrefArchive, ""),
			Checksum: checksum.MustParseDigest("6c452a0ee33a0fc9c98e6830e6fb411e3f4736507977c0e96ec3027488b4c95f"),
		},
		{
			Name:     Crossref4,
			Path:     "crossref/crossref4.json",
			Source:   TarGzSource(crossrefArchive, ""),
			Checksum: checksum.MustParseDigest("d47b65922745e8ac02d52483692682fc79de56f13d1c7a5cd4c98237f6c394e9"),
		},
		{
			Name:     Openfood,
			Path:     "openfood/openfood.json",
			Source:   JSONSource("https://zenodo.org/record/7305505/files/openfood.json"),
			Checksum: checksum.MustParseDigest("57ece15eecf3bbdc4d18a1215a7c3b9d0d58df0505dc4517b103dc75fac4843f"),
		},
		{
			Name:     Twitter,
			Path:     "twitter/twitter.json",
			Source:   JSONSource("https://zenodo.org/record/7229287/files/twitter.json"),
			Checksum: checksum.MustParseDigest("f14e65d4f8df3c9144748191c1e9d46a030067af86d0cc03cc67f22149143c5d"),
		},
		{
			Name: PisonBestbuy,
			Path: "pison/bestbuy_large_record.json",
			Source: GzipSource(Archive{
				URL:      "https://zenodo.org/record/7607865/files/bestbuy_large_record.json.gz",
				Checksum: checksum.MustParseDigest("c8d5efe683256e1530922b7d198fd33c2c8764a594b04b6e8bd29346b09cfb3e"),
			}),
			Checksum: checksum.MustParseDigest("8eee3043d6d0a11cecb43e169f70fae83c68efa7fe4a5508aa2192f717c45617"),
		},
		{
			Name: PisonGoogleMap,
			Path: "pison/google_map_large_record.json",
			Source: GzipSource(Archive{
				URL:      "https://zenodo.org/record/7607889/files/google_map_large_record.json.gz",
				Checksum: checksum.MustParseDigest("bff82147ec42186a016615e888c1e009f306ab0599db20afdf102cb95e6f6e5b"),
			}),
			Checksum: checksum.MustParseDigest("cdbc090edf4faeea80d917e3a2ff618fb0a42626eeac5a4521dae471e4f53574"),
		},
		{
			Name: PisonNSPL,
			Path: "pison/nspl_large_record.json",
			Source: GzipSource(Archive{
				URL:      "https://zenodo.org/record/7607878/files/nspl_large_record.json.gz",
				Checksum: checksum.MustParseDigest("9faccd67b68afd1e750af007093a42cebe876af2143d5954f1607aa8b05479a5"),
			}),
			Checksum: checksum.MustParseDigest("174978fd3d7692dbf641c00c80b34e3ff81f0d3d4602c89ee231b989e6a30dd3"),
		},
		{
			Name: PisonTwitter,
			Path: "pison/twitter_large_record.json",
			Source: GzipSource(Archive{
				URL:      "https://zenodo.org/record/7607891/files/twitter_large_record.json.gz",
				Checksum: checksum.MustParseDigest("4e8bfb5e68bd1b4a9c69c7f2515eb65608ce84e3c284ecb1fe6908eb57b4e650"),
			}),
			Checksum: checksum.MustParseDigest("2357e2bdba1d621a20c2278a88bdec592e93c680de17d8403d9e3018c7539da6"),
		},
		{
			Name: PisonWalmart,
			Path: "pison/walmart_large_record.json",
			Source: GzipSource(Archive{
				URL:      "https://zenodo.org/record/7607882/files/walmart_large_record.json.gz",
				Checksum: checksum.MustParseDigest("3ba4309dd620463045a3996596805f738ead2b257cf7152ea6b1f8ab339e71f4"),
			}),
			Checksum: checksum.MustParseDigest("ebad2cf96871a1c2277c2a19dcc5818f9c2aed063bc8a56459f378024c5a6e14"),
		},
		{
			Name: PisonWiki,
			Path: "pison/wiki_large_record.json",
			Source: GzipSource(Archive{
				URL:      "https://zenodo.org/record/7607884/files/wiki_large_record.json.gz",
				Checksum: checksum.MustParseDigest("60755f971307f29cebbb7daa8624acec41c257dfef5c1543ca0934f5b07edcf7"),
			}),
			Checksum: checksum.MustParseDigest("1abea7979812edc38651a631b11faf64f1eb5a61e2ee875b4e4d4f7b15a8cea9"),
		},
	}
}

// DefaultRegistry returns a registry holding the built-in corpus.
func DefaultRegistry() *Registry {
	return NewRegistry(Catalog()...)
}
