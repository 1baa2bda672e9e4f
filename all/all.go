// Package all registers every ecosystem adapter. Import it for its side
// effects:
//
//	import _ "github.com/verscout/verscout/all"
package all

import (
	_ "github.com/verscout/verscout/internal/cargo"
	_ "github.com/verscout/verscout/internal/docker"
	_ "github.com/verscout/verscout/internal/ghactions"
	_ "github.com/verscout/verscout/internal/golang"
	_ "github.com/verscout/verscout/internal/helm"
	_ "github.com/verscout/verscout/internal/maven"
	_ "github.com/verscout/verscout/internal/npm"
	_ "github.com/verscout/verscout/internal/nuget"
	_ "github.com/verscout/verscout/internal/packagist"
	_ "github.com/verscout/verscout/internal/pypi"
	_ "github.com/verscout/verscout/internal/rubygems"
	_ "github.com/verscout/verscout/internal/terraform"
	_ "github.com/verscout/verscout/internal/toolver"
)
