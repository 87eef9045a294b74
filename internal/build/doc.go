// Package build writes the asset manifest for a deployment.
//
// The builder walks the asset directory and maps every script and style
// source to the file that should be served for it: the ".min" build when
// one exists, the source otherwise.
//
// # Usage
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d of %d minified\n", result.Minified, len(result.Manifest))
//
// # Manifest
//
//	{
//	  "js/app.js": "js/app.min.js",
//	  "js/vendor.js": "js/vendor.js",
//	  "css/theme.css": "css/theme.min.css"
//	}
//
// A minified build older than its source is reported in Result.Stale.
package build
