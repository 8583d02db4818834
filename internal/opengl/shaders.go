package opengl

const (
	maxPointLights = 8
	maxSpotLights  = 4
)

// mesh vertex shader: MVP transform, world position and normal for lighting
const meshVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;

out vec4 fragColor;
out vec3 fragNormal;
out vec3 fragWorldPos;

void main() {
    vec4 worldPos = model * vec4(inPosition, 1.0);
    gl_Position   = mvp * vec4(inPosition, 1.0);
    fragColor     = inColor;
    fragNormal    = mat3(model) * inNormal;
    fragWorldPos  = worldPos.xyz;
}
` + "\x00"

// mesh fragment shader: Blinn-Phong with one directional, point and spot lights
const meshFragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec3 fragWorldPos;

out vec4 outColor;

uniform vec4  tint;
uniform vec3  ambientColor;
uniform vec3  cameraPos;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;

#define MAX_POINT_LIGHTS 8
uniform int   pointLightCount;
uniform vec3  pointLightPos[MAX_POINT_LIGHTS];
uniform vec3  pointLightColor[MAX_POINT_LIGHTS];
uniform float pointLightIntensity[MAX_POINT_LIGHTS];
uniform float pointLightRange[MAX_POINT_LIGHTS];

#define MAX_SPOT_LIGHTS 4
uniform int   spotLightCount;
uniform vec3  spotLightPos[MAX_SPOT_LIGHTS];
uniform vec3  spotLightDir[MAX_SPOT_LIGHTS];
uniform vec3  spotLightColor[MAX_SPOT_LIGHTS];
uniform float spotLightIntensity[MAX_SPOT_LIGHTS];
uniform float spotLightRange[MAX_SPOT_LIGHTS];
uniform float spotLightInner[MAX_SPOT_LIGHTS];
uniform float spotLightOuter[MAX_SPOT_LIGHTS];

float rangeAtten(float dist, float range) {
    float r = max(range, 0.001);
    float a = clamp(1.0 - (dist*dist)/(r*r), 0.0, 1.0);
    return a * a;
}

vec3 shade(vec3 N, vec3 V, vec3 L, vec3 radiance, vec3 albedo) {
    float diff = max(dot(N, L), 0.0);
    vec3  H    = normalize(L + V);
    float specular = pow(max(dot(N, H), 0.0), 32.0) * 0.25;
    return (albedo * diff + vec3(specular)) * radiance;
}

void main() {
    vec4 baseColor = fragColor * tint;
    vec3 N = normalize(fragNormal);
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec3 color = ambientColor * baseColor.rgb;
    color += shade(N, V, normalize(-lightDir), lightColor * lightIntensity, baseColor.rgb);

    for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
        vec3  toLight = pointLightPos[i] - fragWorldPos;
        float atten   = rangeAtten(length(toLight), pointLightRange[i]);
        color += shade(N, V, normalize(toLight), pointLightColor[i] * pointLightIntensity[i] * atten, baseColor.rgb);
    }

    for (int i = 0; i < spotLightCount && i < MAX_SPOT_LIGHTS; i++) {
        vec3  toLight = spotLightPos[i] - fragWorldPos;
        float atten   = rangeAtten(length(toLight), spotLightRange[i]);
        vec3  L       = normalize(toLight);
        float theta   = dot(L, normalize(-spotLightDir[i]));
        float cone    = clamp((theta - spotLightOuter[i]) / max(spotLightInner[i] - spotLightOuter[i], 0.0001), 0.0, 1.0);
        color += shade(N, V, L, spotLightColor[i] * spotLightIntensity[i] * atten * cone, baseColor.rgb);
    }

    outColor = vec4(color, baseColor.a);
}
` + "\x00"

// line shaders: unlit vertex colour times tint
const lineVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;

out vec4 fragColor;

void main() {
    gl_Position = mvp * vec4(inPosition, 1.0);
    fragColor   = inColor;
}
` + "\x00"

const lineFragSrc = `
#version 410 core
in vec4 fragColor;

uniform vec4 tint;

out vec4 outColor;

void main() {
    outColor = fragColor * tint;
}
` + "\x00"
