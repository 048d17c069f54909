package aqua

import "strings"

// AssetStrs returns every asset name aqua-registry's asset template could
// plausibly render for the given version/platform, in preference order.
// Real GitHub release asset lists don't always match a package's primary
// template exactly: darwin builds are sometimes published as a single
// "universal" binary, and windows/arm64 builds are sometimes missing in
// favor of an amd64 build run under emulation. Callers resolving against a
// live release (rather than the registry's own asset field) should try
// each of these in turn, or hand the whole set to the Asset Picker as
// scoring candidates.
func AssetStrs(info *PackageInfo, version, goos, goarch string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	render := func(goarch string) (string, error) {
		osName := applyReplacement(info.Replacements, goos)
		archName := applyReplacement(info.Replacements, goarch)
		vars := TemplateVars{
			Version: version,
			SemVer:  strings.TrimPrefix(version, info.VersionPrefix),
			OS:      osName,
			Arch:    archName,
			Format:  info.Format,
		}
		return RenderTemplate(info.Asset, vars)
	}

	primaryArch := goarch
	if goos == "darwin" && goarch == "arm64" && info.Rosetta2 {
		primaryArch = "amd64"
	}
	if goos == "windows" && goarch == "arm64" && info.WindowsArmEmulation {
		primaryArch = "amd64"
	}

	primary, err := render(primaryArch)
	if err != nil {
		return nil, err
	}
	add(withWindowsExt(info, goos, primary))

	switch goos {
	case "darwin":
		universal, err := renderWithArch(info, version, goos, "universal")
		if err != nil {
			return nil, err
		}
		add(universal)

	case "windows":
		if goarch == "arm64" {
			amd64, err := render("amd64")
			if err != nil {
				return nil, err
			}
			add(withWindowsExt(info, goos, amd64))
		}
	}

	return out, nil
}

// renderWithArch renders the asset template with an explicit Arch override,
// bypassing replacements (used for the darwin "universal" variant, which is
// not itself subject to arch replacement tables).
func renderWithArch(info *PackageInfo, version, goos, arch string) (string, error) {
	osName := applyReplacement(info.Replacements, goos)
	vars := TemplateVars{
		Version: version,
		SemVer:  strings.TrimPrefix(version, info.VersionPrefix),
		OS:      osName,
		Arch:    arch,
		Format:  info.Format,
	}
	return RenderTemplate(info.Asset, vars)
}

// withWindowsExt appends ".exe" to a raw-format windows asset name lacking
// one, mirroring the complete_windows_ext behavior applied during Resolve.
func withWindowsExt(info *PackageInfo, goos, asset string) string {
	if goos != "windows" || !info.completeWindowsExt() || (info.Format != "" && info.Format != "raw") {
		return asset
	}
	if hasArchiveExtension(asset) || strings.HasSuffix(strings.ToLower(asset), ".exe") {
		return asset
	}
	return asset + ".exe"
}
