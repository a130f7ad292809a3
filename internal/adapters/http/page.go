package http

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

// landingPageHTML is the clock in/out page: a Leaflet map with the office
// marker and geofence circle, multi-sample geolocation averaging, and a
// clock button that only appears when the check allows it and the browser
// is online. Office coordinates and radius are injected server-side.
const landingPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Timesheet &amp; WFH Geofence</title>
  <script src="https://cdn.tailwindcss.com"></script>
  <link rel="stylesheet" href="https://unpkg.com/leaflet/dist/leaflet.css"/>
  <script src="https://unpkg.com/leaflet/dist/leaflet.js"></script>
  <style>
    #map { height: 300px; margin-top: 20px; border-radius: 12px; }
  </style>
</head>
<body class="bg-gradient-to-r from-blue-500 to-indigo-600 min-h-screen flex items-center justify-center">
  <div class="bg-white shadow-2xl rounded-2xl p-10 w-full max-w-lg text-center">
    <h1 class="text-2xl font-bold text-gray-800 mb-6">📍 Location Based Timesheet</h1>
    <p class="text-gray-600 mb-4">Your location decides availability of Clock-In/Clock-Out.</p>

    <button
      onclick="getLocation()"
      class="bg-blue-600 hover:bg-blue-700 text-white font-semibold px-6 py-3 rounded-xl shadow-lg transition-transform transform hover:scale-105">
      Check My Access
    </button>

    <p id="status" class="mt-6 text-lg font-medium text-gray-700">Waiting for action...</p>
    <div id="coords" class="mt-4 text-sm text-gray-500"></div>
    <div id="distance" class="mt-2 text-sm text-gray-500"></div>

    <div class="mt-6">
      <button id="clockBtn" disabled style="display:none;"
        class="bg-green-500 text-white px-6 py-3 rounded-xl shadow-md font-semibold disabled:opacity-50 disabled:cursor-not-allowed">
        Clock In / Clock Out
      </button>
    </div>

    <div id="map"></div>
  </div>

  <script>
    let readings = [];
    const NUM_READINGS = 5;
    let map, officeCircle, userMarker;

    function initMap() {
      map = L.map('map').setView([{{.OfficeLat}}, {{.OfficeLon}}], 17);

      L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
        attribution: '&copy; OpenStreetMap contributors'
      }).addTo(map);

      officeCircle = L.circle([{{.OfficeLat}}, {{.OfficeLon}}], {
        color: 'red',
        fillColor: '#f03',
        fillOpacity: 0.2,
        radius: {{.RadiusMeters}}
      }).addTo(map);

      L.marker([{{.OfficeLat}}, {{.OfficeLon}}]).addTo(map).bindPopup("🏢 {{.OfficeName}}");
    }

    initMap();

    function updateOnlineStatus() {
        if (!navigator.onLine) {
            document.getElementById("status").innerText = "⚠️ No internet connection.";
            document.getElementById("clockBtn").style.display = "none";
        } else {
            document.getElementById("status").innerText = "✅ Connected. You can check location.";
        }
    }

    window.addEventListener('offline', updateOnlineStatus);
    window.addEventListener('online', updateOnlineStatus);
    updateOnlineStatus();

    function getLocation() {
      if (!navigator.onLine) {
        document.getElementById("status").innerText = "⚠️ Cannot fetch location without internet.";
        return;
      }

      readings = [];
      document.getElementById("status").innerText = "📡 Fetching multiple high-accuracy location samples...";

      if (navigator.geolocation) {
        for (let i = 0; i < NUM_READINGS; i++) {
          navigator.geolocation.getCurrentPosition(saveReading, showError, {
            enableHighAccuracy: true,
            timeout: 20000,
            maximumAge: 0
          });
        }
      } else {
        document.getElementById("status").innerText = "❌ Geolocation not supported.";
      }
    }

    function saveReading(position) {
      readings.push({
        lat: position.coords.latitude,
        lon: position.coords.longitude
      });

      if (readings.length === NUM_READINGS) {
        const avgLat = readings.reduce((a,b)=>a+b.lat,0)/NUM_READINGS;
        const avgLon = readings.reduce((a,b)=>a+b.lon,0)/NUM_READINGS;
        sendPosition(avgLat, avgLon);
      }
    }

    function sendPosition(lat, lon) {
      fetch("/v1/access/check", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({ latitude: lat, longitude: lon })
      })
      .then(response => response.json())
      .then(data => {
        document.getElementById("status").innerText = data.message;
        document.getElementById("coords").innerHTML = "Latitude: " + lat.toFixed(8) + "<br>Longitude: " + lon.toFixed(8);
        document.getElementById("distance").innerText = "Distance from office: " + data.distance.toFixed(1) + " meters";

        const btn = document.getElementById("clockBtn");
        if (data.allowed && navigator.onLine) {
          btn.style.display = "inline-block";
          btn.disabled = false;
        } else {
          btn.style.display = "none";
        }

        if (userMarker) {
          map.removeLayer(userMarker);
        }
        userMarker = L.marker([lat, lon]).addTo(map).bindPopup("📍 Your Location").openPopup();
        map.setView([lat, lon], 17);
      });
    }

    function showError(error) {
      switch(error.code) {
        case error.PERMISSION_DENIED:
          document.getElementById("status").innerText = "❌ Permission denied.";
          break;
        case error.POSITION_UNAVAILABLE:
          document.getElementById("status").innerText = "⚠️ Location unavailable.";
          break;
        case error.TIMEOUT:
          document.getElementById("status").innerText = "⌛ Request timed out.";
          break;
        default:
          document.getElementById("status").innerText = "❓ Unknown error.";
      }
    }
  </script>
</body>
</html>`

var landingPageTmpl = template.Must(template.New("landing").Parse(landingPageHTML))

// LandingPageHandler serves the clock in/out page with the configured office
// injected into the map and the geofence circle.
func LandingPageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fence := deps.Access.Fence()

		var buf bytes.Buffer
		err := landingPageTmpl.Execute(&buf, map[string]interface{}{
			"OfficeName":   fence.OfficeName,
			"OfficeLat":    fence.Center.Latitude,
			"OfficeLon":    fence.Center.Longitude,
			"RadiusMeters": fence.RadiusMeters,
		})
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.Send(buf.Bytes())
	}
}
