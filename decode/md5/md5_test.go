package md5

import (
	"strings"
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/scene"
)

const sampleMesh = `MD5Version 10
commandline ""

numJoints 2
numMeshes 1

joints {
}

hierarchy {
	"origin"	-1 0 0
	"child"	0 0 0
}

baseframe {
	( 0 0 0 ) ( 0 0 0 )
	( 0 1 0 ) ( 0 0 0 )
}

mesh {
	shader "body"
	numverts 3
	vert 0 ( 0.0 0.0 ) 0 1
	vert 1 ( 1.0 0.0 ) 0 1
	vert 2 ( 0.0 1.0 ) 0 1
	numtris 1
	tri 0 0 1 2
	numweights 1
	weight 0 0 1.0 ( 0 0 0 )
}
`

func TestDecodeMD5Mesh(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleMesh), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(sc.Meshes[0].Positions))
	}
	if len(sc.Meshes[0].Faces) != 1 {
		t.Errorf("expected 1 face, got %d", len(sc.Meshes[0].Faces))
	}
	if sc.Flags&scene.AnimSkeletonOnly != 0 {
		t.Errorf("mesh file should not set AnimSkeletonOnly")
	}
}

func TestDecodeMD5AnimWithoutMesh(t *testing.T) {
	anim := strings.Replace(sampleMesh, "numMeshes 1", "numMeshes 0", 1)
	anim = anim[:strings.Index(anim, "mesh {")]
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(anim), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if sc.Flags&scene.AnimSkeletonOnly == 0 {
		t.Fatalf("expected AnimSkeletonOnly for an anim-only file")
	}
	if len(sc.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(sc.Meshes))
	}
	if len(sc.Animations) != 1 {
		t.Errorf("expected 1 animation, got %d", len(sc.Animations))
	}
}

func TestDecodeMissingVersion(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode([]byte("not md5"), config.New())
	if err == nil {
		t.Fatalf("expected an error for a missing MD5Version header")
	}
}
