package repo

import "addonsmith/pkg/addon"

type Descriptor = addon.Descriptor
type Manifest = addon.Manifest
type SourceSpec = addon.SourceSpec
type Source = addon.Source

const (
	DescriptorFileName = addon.DescriptorFileName
	ChangelogFileName  = addon.ChangelogFileName
	CatalogFileName    = addon.CatalogFileName
)
