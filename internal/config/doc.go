// Package config loads toolbox.json and exposes it as an assets.Backbone.
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "version": "2.3.0",
//	  "assets": {
//	    "dir": "public",
//	    "url": "/assets/",
//	    "minify": true,
//	    "manifest": "public/manifest.json"
//	  },
//	  "admin": { "prefix": "/admin" },
//	  "options": { "textDomain": "shop" },
//	  "resources": [
//	    { "id": "jquery", "file": "vendor/jquery.js" },
//	    { "id": "app", "file": "js/app.js", "deps": ["jquery"],
//	      "localize": { "key": "shop", "data": { "ajaxUrl": "/api" } } },
//	    { "id": "admin", "file": "css/admin.css", "admin": true }
//	  ],
//	  "storage": { "s3": { "bucket": "shop-assets", "prefix": "v2/", "region": "eu-west-1" } },
//	  "server": { "host": "localhost", "port": 3000 },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	site := config.NewSite(cfg, assets.DirChecker{}, slog.Default())
package config
