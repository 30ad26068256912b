// Package mediawiki wraps the three read-only queries of the MediaWiki
// action API used to build an asset catalog: category members with
// continuation, images embedded in a page, and the direct URL of a file.
package mediawiki
