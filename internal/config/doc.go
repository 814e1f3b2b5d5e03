// Package config provides configuration parsing for toastd.
//
// The configuration is stored in toastd.json. Every field is optional;
// missing fields take the defaults shown below. Durations are Go duration
// strings.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "shutdownTimeout": "10s",
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "toast": {
//	    "exitDelay": "300ms",
//	    "maxVisible": 5,
//	    "durations": {
//	      "success": "4s",
//	      "error": "6s",
//	      "info": "4s",
//	      "warning": "5s"
//	    }
//	  },
//	  "websocket": {
//	    "sendBuffer": 64,
//	    "writeTimeout": "10s",
//	    "pingInterval": "30s"
//	  },
//	  "loop": { "queueSize": 256 },
//	  "metrics": { "enabled": true, "namespace": "toastd" },
//	  "tracing": { "enabled": true, "tracerName": "toastd" },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFile("toastd.json")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
