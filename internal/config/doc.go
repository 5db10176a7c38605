// Package config provides the configuration of a sitemaps run: fetch limits,
// traversal filters, report output and the optional .sitemaps site file.
package config
