// Package parser turns configuration files into flat key-value maps.
// Java-style .properties files are read line by line, while YAML and TOML
// documents are decoded into a Node tree and flattened into dot-separated
// keys. The Dispatcher picks a parser from the file extension and contains
// every read or decode failure, so a broken file contributes no keys instead
// of aborting a comparison.
package parser
